package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	customerpkg "github.com/mikios34/customer-admin/customer"
	"github.com/mikios34/customer-admin/entity"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CustomerHandler bundles dependencies for customer-related HTTP handlers.
type CustomerHandler struct {
	service customerpkg.CustomerService
}

// NewCustomerHandler constructs a CustomerHandler.
func NewCustomerHandler(svc customerpkg.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: svc}
}

func listFilter(c *gin.Context) customerpkg.ListFilter {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return customerpkg.ListFilter{
		Page:     page,
		PageSize: size,
		Status:   entity.CustomerStatus(c.Query("status")),
		Query:    c.Query("q"),
	}
}

func customerID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *CustomerHandler) ListCustomers() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		res, err := h.service.ListCustomers(ctx, listFilter(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list customers", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func (h *CustomerHandler) GetCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := customerID(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		cust, err := h.service.GetCustomer(ctx, id)
		if err != nil {
			if errors.Is(err, customerpkg.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load customer", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"customer": cust})
	}
}

func (h *CustomerHandler) DeleteCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := customerID(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		if err := h.service.DeleteCustomer(ctx, id); err != nil {
			if errors.Is(err, customerpkg.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete customer", "detail": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ExportCustomers streams the filtered customer list as an xlsx workbook.
func (h *CustomerHandler) ExportCustomers() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
		defer cancel()
		var buf bytes.Buffer
		if err := h.service.ExportCustomers(ctx, listFilter(c), &buf); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export customers", "detail": err.Error()})
			return
		}
		name := fmt.Sprintf("customers-%s.xlsx", time.Now().UTC().Format("20060102"))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}
