package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"homepath/api/internal/api/handlers"
	"homepath/api/internal/models"
	"homepath/api/internal/services"
	"homepath/api/internal/storage"
)

const clientPhone = "+16045550100"

func setupOfferRouter(svc services.IOfferService) http.Handler {
	h := handlers.NewOfferHandler(svc, 0, zap.NewNop())
	r := newEngine()
	client := r.Group("/api/offers", asClient(clientPhone))
	client.POST("", h.CreateOffer)
	client.GET("/:id", h.GetOffer)
	client.POST("/:id/submit", h.SubmitOffer)
	client.POST("/:id/attachments", h.AddAttachment)
	r.PATCH("/api/offers/:id/status", h.UpdateOfferStatus)
	return r
}

func offerBody() map[string]interface{} {
	return map[string]interface{}{
		"propertyAddress": "101-2345 Kingsway, Vancouver",
		"offerDetails": map[string]interface{}{
			"offerPrice": 735000, "deposit": 36750, "subjects": []string{"financing", "inspection"},
			"expiryDate": "2026-11-01", "possessionDate": "2026-12-15",
		},
	}
}

func TestOfferHandler_CreateOffer(t *testing.T) {
	mockSvc := new(MockOfferService)
	router := setupOfferRouter(mockSvc)
	mockSvc.On("Create", mock.Anything, clientPhone, mock.MatchedBy(func(in services.OfferInput) bool {
		return in.OfferDetails.OfferPrice == 735000 && len(in.OfferDetails.Subjects) == 2
	})).Return(&models.Offer{ID: "offer-1", UserID: clientPhone, Status: models.OfferDraft}, nil)

	w := performRequest(router, "POST", "/api/offers", offerBody())

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "draft", data["status"])
	mockSvc.AssertExpectations(t)
}

func TestOfferHandler_CreateOffer_Invalid(t *testing.T) {
	mockSvc := new(MockOfferService)
	router := setupOfferRouter(mockSvc)

	body := offerBody()
	body["offerDetails"].(map[string]interface{})["offerPrice"] = 0
	delete(body, "propertyAddress")
	w := performRequest(router, "POST", "/api/offers", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields := fieldsOf(t, decode(t, w))
	assert.Equal(t, "is required", fields["propertyAddress"])
	assert.Equal(t, "must be greater than 0", fields["offerDetails.offerPrice"])
	mockSvc.AssertNotCalled(t, "Create")
}

func TestOfferHandler_SubmitOffer_CompletesMilestone(t *testing.T) {
	mockSvc := new(MockOfferService)
	router := setupOfferRouter(mockSvc)
	mockSvc.On("Submit", mock.Anything, "offer-1", clientPhone).
		Return(&models.Offer{ID: "offer-1", Status: models.OfferSubmitted}, true, nil)

	w := performRequest(router, "POST", "/api/offers/offer-1/submit", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["milestoneUpdated"])
	assert.Equal(t, "submitted", body["data"].(map[string]interface{})["status"])
}

func TestOfferHandler_SubmitOffer_MilestoneWriteFailed(t *testing.T) {
	mockSvc := new(MockOfferService)
	router := setupOfferRouter(mockSvc)
	mockSvc.On("Submit", mock.Anything, "offer-1", clientPhone).
		Return(&models.Offer{ID: "offer-1", Status: models.OfferSubmitted}, false, nil)

	w := performRequest(router, "POST", "/api/offers/offer-1/submit", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["milestoneUpdated"])
}

func TestOfferHandler_SubmitOffer_Errors(t *testing.T) {
	mockSvc := new(MockOfferService)
	router := setupOfferRouter(mockSvc)
	mockSvc.On("Submit", mock.Anything, "offer-sent", clientPhone).Return(nil, false, services.ErrInvalidTransition)
	mockSvc.On("Submit", mock.Anything, "offer-gone", clientPhone).Return(nil, false, services.ErrNotFound)

	w := performRequest(router, "POST", "/api/offers/offer-sent/submit", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = performRequest(router, "POST", "/api/offers/offer-gone/submit", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOfferHandler_GetOffer(t *testing.T) {
	mockSvc := new(MockOfferService)
	router := setupOfferRouter(mockSvc)
	mockSvc.On("FindByID", mock.Anything, "offer-1", clientPhone).Return(&models.Offer{ID: "offer-1"}, nil)

	w := performRequest(router, "GET", "/api/offers/offer-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestOfferHandler_AddAttachment(t *testing.T) {
	mockSvc := new(MockOfferService)
	router := setupOfferRouter(mockSvc)
	mockSvc.On("AddAttachment", mock.Anything, "offer-1", clientPhone, "preapproval.pdf", "application/pdf").
		Return(&services.AttachmentUpload{UploadURL: "https://bucket.s3.example.com/put", Key: "offers/offer-1/abc-preapproval.pdf"}, nil)
	mockSvc.On("AddAttachment", mock.Anything, "offer-1", clientPhone, "run.exe", "application/x-msdownload").
		Return(nil, storage.ErrUnsupportedContentType)

	w := performRequest(router, "POST", "/api/offers/offer-1/attachments", map[string]string{
		"filename": "preapproval.pdf", "contentType": "application/pdf",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "https://bucket.s3.example.com/put", decode(t, w)["data"].(map[string]interface{})["uploadUrl"])

	w = performRequest(router, "POST", "/api/offers/offer-1/attachments", map[string]string{
		"filename": "run.exe", "contentType": "application/x-msdownload",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, fieldsOf(t, decode(t, w)), "contentType")
}

func TestOfferHandler_UpdateOfferStatus(t *testing.T) {
	mockSvc := new(MockOfferService)
	router := setupOfferRouter(mockSvc)
	mockSvc.On("UpdateStatus", mock.Anything, "offer-1", models.OfferAccepted).
		Return(&models.Offer{ID: "offer-1", Status: models.OfferAccepted}, nil)

	w := performRequest(router, "PATCH", "/api/offers/offer-1/status", map[string]string{"status": "accepted"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, "PATCH", "/api/offers/offer-1/status", map[string]string{"status": "draft"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, fieldsOf(t, decode(t, w))["status"], "accepted, rejected")
	mockSvc.AssertNumberOfCalls(t, "UpdateStatus", 1)
}

// The submit response alone must show both effects of an offer submission.
func TestOfferHandler_SubmitOffer_ResponseShape(t *testing.T) {
	mockSvc := new(MockOfferService)
	router := setupOfferRouter(mockSvc)
	mockSvc.On("Submit", mock.Anything, "offer-1", clientPhone).
		Return(&models.Offer{ID: "offer-1", Status: models.OfferSubmitted}, true, nil)

	body := decode(t, performRequest(router, "POST", "/api/offers/offer-1/submit", nil))
	assert.ElementsMatch(t, []string{"success", "data", "milestoneUpdated"}, keys(body))
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
