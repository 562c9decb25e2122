package expense

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthshare/hearthshare/internal/expense/split"
	"github.com/hearthshare/hearthshare/pkg/middleware"
	"github.com/hearthshare/hearthshare/pkg/response"
)

func postExpense(t *testing.T, handler *Handler, userID uuid.UUID, req *CreateExpenseRequest) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(req)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	r = r.WithContext(context.WithValue(r.Context(), middleware.UserIDKey, userID))
	rec := httptest.NewRecorder()
	handler.Create(rec, r)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *response.APIError {
	t.Helper()

	var envelope response.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	require.NotNil(t, envelope.Error)
	return envelope.Error
}

func TestCreateHandlerRejectsUnknownSplitType(t *testing.T) {
	groupID := uuid.New()
	handler := NewHandler(newTestService(groupID, nil, nil))

	req := equalDinner(groupID)
	req.SplitType = "equal"
	rec := postExpense(t, handler, userA, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	apiErr := decodeError(t, rec)
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)
	assert.Contains(t, apiErr.Message, "unknown split type")
}

func TestCreateHandlerRejectsDuplicateParticipants(t *testing.T) {
	groupID := uuid.New()
	handler := NewHandler(newTestService(groupID, nil, nil))

	req := equalDinner(groupID)
	req.Participants = []split.Input{{UserID: userA}, {UserID: userB}, {UserID: userB}}
	rec := postExpense(t, handler, userA, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, rec).Code)
}

func TestCreateHandlerRejectsNonMember(t *testing.T) {
	groupID := uuid.New()
	handler := NewHandler(newTestService(groupID, nil, nil))

	rec := postExpense(t, handler, uuid.New(), equalDinner(groupID))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decodeError(t, rec).Code)
}

func TestCreateHandlerAcceptsValidExpense(t *testing.T) {
	groupID := uuid.New()
	handler := NewHandler(newTestService(groupID, nil, nil))

	rec := postExpense(t, handler, userA, equalDinner(groupID))

	assert.Equal(t, http.StatusCreated, rec.Code)
}
