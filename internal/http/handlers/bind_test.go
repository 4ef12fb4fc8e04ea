package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

func TestBindJSON_ValidationErrorsUseJSONFieldNames(t *testing.T) {
	r := gin.New()
	r.POST("/tasks", func(ctx *gin.Context) {
		var req task.CreateTaskRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})

	w := doJSON(r, http.MethodPost, "/tasks", `{"status":"NOT_A_STATUS"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var resp handlers.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}

	if resp.Status != http.StatusBadRequest || resp.Error != "Validation Failed" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if resp.Path != "/tasks" {
		t.Fatalf("path = %q, want /tasks", resp.Path)
	}

	wantRules := map[string]string{
		"title":  "required",
		"status": "oneof",
	}

	found := map[string]handlers.FieldError{}
	for _, fieldErr := range resp.Fields {
		found[fieldErr.Field] = fieldErr
	}

	for field, rule := range wantRules {
		fieldErr, ok := found[field]
		if !ok {
			t.Fatalf("missing field error for %q: %+v", field, resp.Fields)
		}
		if fieldErr.Rule != rule {
			t.Fatalf("field %q rule mismatch: got %q want %q", field, fieldErr.Rule, rule)
		}
		if fieldErr.Message == "" {
			t.Fatalf("field %q should include a non-empty message", field)
		}
	}
}

func TestBindJSON_TypeMismatch(t *testing.T) {
	r := gin.New()
	r.POST("/tasks", func(ctx *gin.Context) {
		var req task.CreateTaskRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})

	w := doJSON(r, http.MethodPost, "/tasks", `{"title":123}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var resp handlers.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}

	if len(resp.Fields) == 0 {
		t.Fatal("expected at least one field error")
	}
	if resp.Fields[0].Field != "title" {
		t.Fatalf("expected fields[0].field=title, got %q", resp.Fields[0].Field)
	}
	if resp.Fields[0].Rule != "type" {
		t.Fatalf("expected fields[0].rule=type, got %q", resp.Fields[0].Rule)
	}
}

func TestBindJSON_MalformedBody(t *testing.T) {
	r := gin.New()
	r.POST("/tasks", func(ctx *gin.Context) {
		var req task.CreateTaskRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})

	w := doJSON(r, http.MethodPost, "/tasks", `{"title": "oops"`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}
}
