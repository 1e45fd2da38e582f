package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/orbitel/oms/internal/adapter/http/middleware"
	"github.com/orbitel/oms/internal/adapter/http/response"
	"github.com/orbitel/oms/internal/domain"
	"github.com/orbitel/oms/pkg/apperror"
)

// writeError translates a use case error into its HTTP representation.
func writeError(w http.ResponseWriter, err error) {
	appErr := apperror.MapError(err)
	response.Error(w, appErr.Status, appErr.Message)
}

// requireActor pulls the authenticated identity off the request, writing a
// 401 when it is missing.
func requireActor(w http.ResponseWriter, r *http.Request) (domain.Actor, domain.Role, bool) {
	actor, role, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
	}
	return actor, role, ok
}

// parsePagination reads page and page_size query params, zero when absent.
func parsePagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	return page, pageSize
}

// parseDate accepts RFC 3339 timestamps or bare dates.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func getClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
