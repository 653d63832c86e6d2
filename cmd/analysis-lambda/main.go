package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/wolfman30/ems-vitals-platform/internal/vitals"
	"github.com/wolfman30/ems-vitals-platform/pkg/logging"
)

const analysisPath = "/health-metrics-analysis"

type analyzer interface {
	Analyze(ctx context.Context, in vitals.MetricsInput) (vitals.Assessment, error)
}

func main() {
	logger := logging.New(os.Getenv("LOG_LEVEL"))
	// Analysis is stateless, so the store is never touched.
	service := vitals.NewService(vitals.NewInMemoryStore(), logger)

	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, service, logger, evt)
	})
}

func handle(ctx context.Context, svc analyzer, logger *logging.Logger, evt events.APIGatewayV2HTTPRequest) (resp events.APIGatewayV2HTTPResponse, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("analysis lambda panicked", "panic", rec)
			resp, err = jsonResponse(http.StatusInternalServerError, errorBody(vitals.FallbackAdvice)), nil
		}
	}()

	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}

	if path == "/health" {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusOK, Body: "ok"}, nil
	}
	if path != analysisPath {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusNotFound}, nil
	}
	if method != http.MethodPost {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusMethodNotAllowed}, nil
	}

	body, err := decodeBody(evt)
	if err != nil {
		return jsonResponse(http.StatusBadRequest, errorBody("invalid request body")), nil
	}
	var in vitals.MetricsInput
	if err := json.Unmarshal(body, &in); err != nil {
		return jsonResponse(http.StatusBadRequest, errorBody("invalid request body")), nil
	}

	assessment, err := svc.Analyze(ctx, in)
	if err != nil {
		if errors.Is(err, vitals.ErrInvalidReading) {
			return jsonResponse(http.StatusBadRequest, errorBody(err.Error())), nil
		}
		logger.Error("analysis failed", "error", err)
		return jsonResponse(http.StatusInternalServerError, errorBody(vitals.FallbackAdvice)), nil
	}
	return jsonResponse(http.StatusOK, assessment), nil
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	return base64.StdEncoding.DecodeString(evt.Body)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func jsonResponse(status int, v any) events.APIGatewayV2HTTPResponse {
	payload, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		payload = []byte(`{"error":"` + vitals.FallbackAdvice + `"}`)
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(payload),
	}
}
