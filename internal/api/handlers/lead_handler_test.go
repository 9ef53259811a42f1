package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"homepath/api/internal/api/handlers"
	"homepath/api/internal/journey"
	"homepath/api/internal/models"
	"homepath/api/internal/services"
)

func setupLeadRouter(svc services.ILeadService) http.Handler {
	h := handlers.NewLeadHandler(svc, 0, zap.NewNop())
	r := newEngine()
	r.POST("/api/leads", h.CreateLead)
	r.GET("/api/leads", h.ListLeads)
	return r
}

func TestLeadHandler_CreateLead(t *testing.T) {
	mockSvc := new(MockLeadService)
	router := setupLeadRouter(mockSvc)
	mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(in services.LeadInput) bool {
		return in.Source == models.LeadSourceIncentives && in.Metadata["page"] == "/incentives"
	})).Return(&models.Lead{ID: "lead-1", PhoneNumber: "+16045550100", Source: models.LeadSourceIncentives}, nil)

	w := performRequest(router, "POST", "/api/leads", map[string]interface{}{
		"name": "Sam Patel", "phoneNumber": "(604) 555-0100", "source": "incentives",
		"metadata": map[string]string{"page": "/incentives"},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "+16045550100", decode(t, w)["data"].(map[string]interface{})["phoneNumber"])
	mockSvc.AssertExpectations(t)
}

func TestLeadHandler_CreateLead_FieldErrors(t *testing.T) {
	mockSvc := new(MockLeadService)
	router := setupLeadRouter(mockSvc)

	w := performRequest(router, "POST", "/api/leads", map[string]interface{}{
		"name": "Sam", "phoneNumber": "6045550100", "email": "not-an-email", "source": "billboard",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields := fieldsOf(t, decode(t, w))
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Contains(t, fields["source"], "landing")
	mockSvc.AssertNotCalled(t, "Create")
}

func TestLeadHandler_CreateLead_BadPhone(t *testing.T) {
	mockSvc := new(MockLeadService)
	router := setupLeadRouter(mockSvc)
	mockSvc.On("Create", mock.Anything, mock.Anything).
		Return(nil, &journey.ValidationError{Fields: map[string]string{"phoneNumber": "invalid phone number"}})

	w := performRequest(router, "POST", "/api/leads", map[string]interface{}{
		"name": "Sam", "phoneNumber": "12", "source": "landing",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid phone number", fieldsOf(t, decode(t, w))["phoneNumber"])
}

func TestLeadHandler_ListLeads(t *testing.T) {
	mockSvc := new(MockLeadService)
	router := setupLeadRouter(mockSvc)
	mockSvc.On("List", mock.Anything, services.ListFilter{Source: "blog", Offset: 10}).
		Return([]models.Lead{{ID: "lead-9"}}, nil)

	w := performRequest(router, "GET", "/api/leads?source=blog&offset=10", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)
	mockSvc.AssertExpectations(t)
}
