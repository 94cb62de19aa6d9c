// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// AdminKeyHeader carries the admin key on mutating requests.
const AdminKeyHeader = "X-Admin-Key"

// RequireAdminKey rejects requests whose X-Admin-Key header does not match
// the bcrypt hash. An empty hash disables the check.
func RequireAdminKey(hash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if hash == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(AdminKeyHeader)
			if key == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Admin key required"})
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
				slog.Warn("admin key rejected", "ip", clientIP(r), "path", r.URL.Path)
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "Invalid admin key"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
