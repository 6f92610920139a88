package httpapi

import (
	"net/http"

	"teamwerk.io/internal/audit"
)

const maxAuditLimit = 200

func (a *API) handleGlobalAuditLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.authorize(w, r, false); !ok {
		return
	}
	a.serveAuditLog(w, r, r.URL.Query().Get("tenant_id"))
}

func (a *API) handleTenantAuditLog(w http.ResponseWriter, r *http.Request, tenantID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.authorize(w, r, false); !ok {
		return
	}
	a.serveAuditLog(w, r, tenantID)
}

func (a *API) serveAuditLog(w http.ResponseWriter, r *http.Request, tenantID string) {
	q := r.URL.Query()
	limit, err := parseNonNegativeInt(q.Get("limit"), 0, maxAuditLimit)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "limit "+err.Error())
		return
	}
	offset, err := parseNonNegativeInt(q.Get("offset"), 0, 0)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "offset "+err.Error())
		return
	}

	page, err := a.query.Logs(r.Context(), audit.Filter{
		TenantID: tenantID,
		Action:   q.Get("action"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "audit query failed")
		return
	}
	writeJSON(w, http.StatusOK, page)
}
