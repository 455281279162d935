package dto

import "github.com/propcore/backend/internal/domain/shared"

// Response represents a standard API response
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	Field     string             `json:"field,omitempty"`
	Count     int64              `json:"count,omitempty"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes one rejected request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Meta represents pagination metadata
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

// NewPageResponse creates a success response from a paginated result
func NewPageResponse[T any](page shared.Paginated[T]) Response {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	return Response{
		Success: true,
		Data:    items,
		Meta: &Meta{
			Total:      page.Total,
			Page:       page.Page,
			PageSize:   page.PageSize,
			TotalPages: page.TotalPages,
		},
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message, requestID string) Response {
	return Response{
		Success: false,
		Error:   &ErrorInfo{Code: code, Message: message, RequestID: requestID},
	}
}

// NewDomainErrorResponse renders a domain error with its field and count
func NewDomainErrorResponse(err *shared.DomainError, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      err.Code,
			Message:   err.Message,
			Field:     err.Field,
			Count:     err.Count,
			RequestID: requestID,
		},
	}
}

// NewValidationErrorResponse creates a 400 response listing every rejected field
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	info := &ErrorInfo{
		Code:      shared.CodeValidation,
		Message:   message,
		RequestID: requestID,
		Details:   details,
	}
	if len(details) > 0 {
		info.Field = details[0].Field
	}
	return Response{Success: false, Error: info}
}

// PageQuery binds ?page=&page_size=&sort_by=&sort_order=
type PageQuery struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy    string `form:"sort_by" binding:"max=50"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// Filter converts the query into a repository filter
func (q PageQuery) Filter() shared.Filter {
	return shared.Filter{
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.SortBy,
		OrderDir: q.SortOrder,
	}.Normalize()
}
