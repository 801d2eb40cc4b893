package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lifocus/lifocus-server/internal/domain"
	"github.com/lifocus/lifocus-server/internal/http/response"
)

// pageBody marks response bodies that belong under "page_data".
type pageBody interface {
	pageBody()
}

// PageData is one page of a paginated listing.
type PageData[T any] struct {
	Total    int `json:"total" doc:"Total matching items"`
	Pages    int `json:"pages" doc:"Total number of pages"`
	PageNo   int `json:"page_no" doc:"Current page, 1-based"`
	PageSize int `json:"page_size" doc:"Items per page"`
	Data     []T `json:"data" doc:"Items on this page"`
}

func (PageData[T]) pageBody() {}

func newPageData[T any](r domain.PageResult[T]) PageData[T] {
	return PageData[T]{
		Total:    r.Total,
		Pages:    r.Pages,
		PageNo:   r.PageNo,
		PageSize: r.PageSize,
		Data:     r.Items,
	}
}

// MessageBody is a response that carries only a message.
type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

// EnvelopeTransformer wraps successful bodies in {code, message, data}.
// Errors already have their final shape and pass through unchanged.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	switch body := v.(type) {
	case nil, *APIError, response.Envelope, *response.Envelope:
		return v, nil
	case MessageBody:
		return response.Envelope{Code: statusCode(status), Message: body.Message}, nil
	case *MessageBody:
		return response.Envelope{Code: statusCode(status), Message: body.Message}, nil
	case pageBody:
		return response.Envelope{Code: statusCode(status), Message: response.MessageSuccess, PageData: body}, nil
	}

	return response.Envelope{Code: statusCode(status), Message: response.MessageSuccess, Data: v}, nil
}

func statusCode(status string) int {
	code, err := strconv.Atoi(status)
	if err != nil || code == 0 {
		return 200
	}
	return code
}
