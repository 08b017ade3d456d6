package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	commapp "github.com/commhub/backend/internal/application/communication"
	"github.com/commhub/backend/internal/domain/communication"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testCaller = commapp.Caller{TenantID: "t1", UserID: "u1"}

func newLetterRouter(svc LetterService) *gin.Engine {
	h := NewLetterHandler(NewBaseHandler(nil, false), svc)
	r := gin.New()
	r.Use(withCaller("t1", "u1"))
	r.POST("/letters", h.Generate)
	r.GET("/letters", h.List)
	r.GET("/letters/:id", h.Get)
	r.POST("/letters/:id/download-url", h.RefreshDownloadURL)
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(rec, req)
	return rec
}

func TestLetterHandler_Generate(t *testing.T) {
	svc := new(mockLetterService)
	expires := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	req := commapp.GenerateLetterRequest{MemberID: "M-1", TemplateID: "tpl-1"}
	svc.On("GenerateLetter", mock.Anything, testCaller, req).Return(&commapp.GenerateLetterResponse{
		LetterID:    "l-1",
		DownloadURL: "https://bucket/letters/l-1.docx?sig",
		FileName:    "M-1-welcome.docx",
		ExpiresAt:   expires,
	}, nil)

	rec := doJSON(newLetterRouter(svc), http.MethodPost, "/letters", `{"member_id":"M-1","template_id":"tpl-1"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body struct {
		Success bool                           `json:"success"`
		Data    commapp.GenerateLetterResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "l-1", body.Data.LetterID)
	assert.Equal(t, "https://bucket/letters/l-1.docx?sig", body.Data.DownloadURL)
	assert.True(t, expires.Equal(body.Data.ExpiresAt))
	svc.AssertExpectations(t)
}

func TestLetterHandler_Generate_MissingFields(t *testing.T) {
	svc := new(mockLetterService)

	rec := doJSON(newLetterRouter(svc), http.MethodPost, "/letters", `{"member_id":"M-1"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "template_id", resp.Error.Details[0].Field)
	svc.AssertNotCalled(t, "GenerateLetter", mock.Anything, mock.Anything, mock.Anything)
}

func TestLetterHandler_Generate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"bad member id", communication.ErrInvalidIdentifier, http.StatusBadRequest, "INVALID_IDENTIFIER"},
		{"other tenant template", communication.ErrTenantMismatch, http.StatusNotFound, "NOT_FOUND"},
		{"member source down", communication.Failure(communication.ErrUpstreamDataUnavailable, errors.New("503")), http.StatusBadGateway, "UPSTREAM_DATA_UNAVAILABLE"},
		{"publish", communication.Failure(communication.ErrPublishFailed, errors.New("s3")), http.StatusInternalServerError, "PUBLISH_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockLetterService)
			svc.On("GenerateLetter", mock.Anything, testCaller, mock.Anything).Return(nil, tt.err)

			rec := doJSON(newLetterRouter(svc), http.MethodPost, "/letters", `{"member_id":"M-1","template_id":"tpl-1"}`)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeResponse(t, rec).Error.Code)
		})
	}
}

func TestLetterHandler_Get(t *testing.T) {
	svc := new(mockLetterService)
	svc.On("GetLetter", mock.Anything, testCaller, "l-1").Return(&commapp.LetterResponse{ID: "l-1", MemberID: "M-1"}, nil)
	svc.On("GetLetter", mock.Anything, testCaller, "l-2").Return(nil, communication.ErrTenantMismatch)
	r := newLetterRouter(svc)

	rec := doJSON(r, http.MethodGet, "/letters/l-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"member_id":"M-1"`)

	rec = doJSON(r, http.MethodGet, "/letters/l-2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLetterHandler_List(t *testing.T) {
	svc := new(mockLetterService)
	want := commapp.ListLettersRequest{Page: 2, PageSize: 10, MemberID: "M-1"}
	svc.On("ListLetters", mock.Anything, testCaller, want).Return([]commapp.LetterResponse{{ID: "l-1"}}, int64(11), nil)

	rec := doJSON(newLetterRouter(svc), http.MethodGet, "/letters?page=2&page_size=10&member_id=M-1", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(11), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 10, resp.Meta.PageSize)
	assert.Equal(t, 2, resp.Meta.TotalPages)
}

func TestLetterHandler_List_InvalidQuery(t *testing.T) {
	svc := new(mockLetterService)

	rec := doJSON(newLetterRouter(svc), http.MethodGet, "/letters?page_size=1000", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "ListLetters", mock.Anything, mock.Anything, mock.Anything)
}

func TestLetterHandler_RefreshDownloadURL(t *testing.T) {
	svc := new(mockLetterService)
	svc.On("RefreshDownloadURL", mock.Anything, testCaller, "l-1").Return(&commapp.DownloadURLResponse{
		LetterID:    "l-1",
		DownloadURL: "https://bucket/new",
	}, nil)

	rec := doJSON(newLetterRouter(svc), http.MethodPost, "/letters/l-1/download-url", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://bucket/new")
	svc.AssertExpectations(t)
}
