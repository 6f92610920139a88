package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"teamwerk.io/internal/audit"
	"teamwerk.io/internal/auth"
	"teamwerk.io/internal/identity"
	"teamwerk.io/internal/org"
	"teamwerk.io/internal/provision"
	"teamwerk.io/internal/tenant"
)

const authHeader = "Authorization"

type createTenantRequest struct {
	Name     string `json:"name"`
	Country  string `json:"country"`
	Timezone string `json:"timezone"`
	Industry string `json:"industry"`
}

type inviteUserRequest struct {
	Email        string `json:"email"`
	Role         string `json:"role"`
	FullName     string `json:"full_name"`
	DepartmentID string `json:"department_id"`
	TeamID       string `json:"team_id"`
	SiteID       string `json:"site_id"`
}

type createTestUserRequest struct {
	Role     string `json:"role"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// authorize runs the superadmin guard. On denial it writes the HTTP error
// and, for mutating endpoints, records an ACCESS_DENIED entry; no
// operation-specific audit row is ever written for a rejected call.
func (a *API) authorize(w http.ResponseWriter, r *http.Request, mutating bool) (string, bool) {
	actorID, err := a.guard.Authorize(r.Context(), r.Header.Get(authHeader))
	if err == nil {
		return actorID, true
	}
	code := http.StatusInternalServerError
	msg := "authorization failed"
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		code = http.StatusUnauthorized
		msg = err.Error()
	case errors.Is(err, auth.ErrForbidden):
		code = http.StatusForbidden
		msg = err.Error()
	}
	if mutating {
		a.recorder.Record(r.Context(), audit.Entry{
			Action: audit.ActionAccessDenied,
			Request: map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			},
			Status:       audit.StatusError,
			ErrorMessage: msg,
			IP:           clientIP(r),
			UserAgent:    r.UserAgent(),
		})
	}
	writeError(w, r, code, msg)
	return "", false
}

func (a *API) handleTenants(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	actorID, ok := a.authorize(w, r, true)
	if !ok {
		return
	}
	var req createTenantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	entry := audit.Entry{
		ActorID: actorID,
		Action:  audit.ActionCreateTenant,
		Request: map[string]any{
			"name":     req.Name,
			"country":  req.Country,
			"timezone": req.Timezone,
			"industry": req.Industry,
		},
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	}

	t, err := a.tenants.CreateTenant(r.Context(), tenant.CreateParams{
		Name:     req.Name,
		Country:  req.Country,
		Timezone: req.Timezone,
		Industry: req.Industry,
	})
	if err != nil {
		entry.Status = audit.StatusError
		entry.ErrorMessage = err.Error()
		a.recorder.Record(r.Context(), entry)
		handleAdminError(w, r, err)
		return
	}

	entry.TenantID = t.ID
	entry.Response = map[string]any{
		"tenant_id": t.ID,
		"name":      t.Name,
		"status":    t.Status,
	}
	a.recorder.Record(r.Context(), entry)
	w.Header().Set("Location", fmt.Sprintf("/tenants/%s", t.ID))
	writeJSON(w, http.StatusCreated, t)
}

func (a *API) handleTenantScoped(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/tenants/")
	path = strings.Trim(path, "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	tenantID := parts[0]
	switch {
	case len(parts) == 3 && parts[1] == "users" && parts[2] == "invite":
		a.handleInviteUser(w, r, tenantID)
	case len(parts) == 3 && parts[1] == "users" && parts[2] == "create-test":
		a.handleCreateTestUser(w, r, tenantID)
	case len(parts) == 3 && parts[1] == "org" && parts[2] == "bootstrap":
		a.handleBootstrapOrg(w, r, tenantID)
	case len(parts) == 2 && parts[1] == "audit-log":
		a.handleTenantAuditLog(w, r, tenantID)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) handleInviteUser(w http.ResponseWriter, r *http.Request, tenantID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	actorID, ok := a.authorize(w, r, true)
	if !ok {
		return
	}
	var req inviteUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	entry := audit.Entry{
		ActorID:  actorID,
		Action:   audit.ActionInviteUser,
		TenantID: tenantID,
		Request: map[string]any{
			"email":         req.Email,
			"role":          req.Role,
			"full_name":     req.FullName,
			"department_id": req.DepartmentID,
			"team_id":       req.TeamID,
			"site_id":       req.SiteID,
		},
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	}

	res, err := a.users.InviteUser(r.Context(), provision.InviteParams{
		TenantID:     tenantID,
		Email:        req.Email,
		Role:         req.Role,
		FullName:     req.FullName,
		DepartmentID: req.DepartmentID,
		TeamID:       req.TeamID,
		SiteID:       req.SiteID,
		ActorID:      actorID,
	})
	if err != nil {
		entry.Status = audit.StatusError
		entry.ErrorMessage = err.Error()
		a.recorder.Record(r.Context(), entry)
		handleAdminError(w, r, err)
		return
	}

	entry.TargetUserID = res.IdentityID
	entry.Response = map[string]any{
		"identity_id":   res.IdentityID,
		"employee_id":   res.EmployeeID,
		"email":         res.Email,
		"role":          res.Role,
		"invite_status": res.InviteStatus,
	}
	a.recorder.Record(r.Context(), entry)
	writeJSON(w, http.StatusCreated, res)
}

func (a *API) handleCreateTestUser(w http.ResponseWriter, r *http.Request, tenantID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	actorID, ok := a.authorize(w, r, true)
	if !ok {
		return
	}
	var req createTestUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	entry := audit.Entry{
		ActorID:  actorID,
		Action:   audit.ActionCreateTestUser,
		TenantID: tenantID,
		Request: map[string]any{
			"role":      req.Role,
			"full_name": req.FullName,
			"email":     req.Email,
		},
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	}

	res, err := a.users.CreateTestUser(r.Context(), provision.TestUserParams{
		TenantID: tenantID,
		Role:     req.Role,
		FullName: req.FullName,
		Email:    req.Email,
		ActorID:  actorID,
	})
	if err != nil {
		entry.Status = audit.StatusError
		entry.ErrorMessage = err.Error()
		a.recorder.Record(r.Context(), entry)
		handleAdminError(w, r, err)
		return
	}

	// The plaintext password goes to the caller exactly once; the stored
	// audit copy carries the redaction marker instead.
	entry.TargetUserID = res.IdentityID
	entry.Response = map[string]any{
		"identity_id":  res.IdentityID,
		"employee_id":  res.EmployeeID,
		"email":        res.Email,
		"role":         res.Role,
		"is_test_user": res.TestUser,
		"credentials": map[string]any{
			"email":    res.Credentials.Email,
			"password": res.Credentials.Password,
		},
	}
	a.recorder.Record(r.Context(), entry, "password")
	writeJSON(w, http.StatusCreated, res)
}

func (a *API) handleBootstrapOrg(w http.ResponseWriter, r *http.Request, tenantID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	actorID, ok := a.authorize(w, r, true)
	if !ok {
		return
	}

	entry := audit.Entry{
		ActorID:   actorID,
		Action:    audit.ActionBootstrapOrg,
		TenantID:  tenantID,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	}

	res, err := a.bootstrap.Bootstrap(r.Context(), tenantID)
	if err != nil {
		entry.Status = audit.StatusError
		entry.ErrorMessage = err.Error()
		a.recorder.Record(r.Context(), entry)
		handleAdminError(w, r, err)
		return
	}

	created := make(map[string]any, len(res.Created))
	for k, v := range res.Created {
		created[k] = v
	}
	skipped := make([]any, 0, len(res.Skipped))
	for _, k := range res.Skipped {
		skipped = append(skipped, k)
	}
	entry.Response = map[string]any{
		"created": created,
		"skipped": skipped,
	}
	a.recorder.Record(r.Context(), entry)
	writeJSON(w, http.StatusOK, res)
}

func handleAdminError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tenant.ErrInvalidInput),
		errors.Is(err, provision.ErrInvalidInput),
		errors.Is(err, provision.ErrInvalidRole):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, tenant.ErrNotFound), errors.Is(err, identity.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, tenant.ErrConflict),
		errors.Is(err, provision.ErrConflict),
		errors.Is(err, identity.ErrConflict),
		errors.Is(err, org.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, identity.ErrUpstream):
		writeError(w, r, http.StatusBadGateway, "identity service unavailable")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
