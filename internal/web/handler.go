// Package web serves the browser UI for viewing and editing the secret document.
// Pages are rendered on the server; every edit action is a form post.
package web

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/blueprint-secrets/internal/auth/domain"
	authHTTP "github.com/allisson/blueprint-secrets/internal/auth/http"
	authDTO "github.com/allisson/blueprint-secrets/internal/auth/http/dto"
	authUseCase "github.com/allisson/blueprint-secrets/internal/auth/usecase"
	apperrors "github.com/allisson/blueprint-secrets/internal/errors"
	"github.com/allisson/blueprint-secrets/internal/httputil"
	secretsDomain "github.com/allisson/blueprint-secrets/internal/secrets/domain"
	secretsUseCase "github.com/allisson/blueprint-secrets/internal/secrets/usecase"
	customValidation "github.com/allisson/blueprint-secrets/internal/validation"
	"github.com/allisson/blueprint-secrets/internal/web/editor"
)

const (
	loginPage = "login.html"
	viewPage  = "view.html"
	editPage  = "edit.html"

	readFailedMessage  = "Failed to retrieve secret"
	saveFailedMessage  = "Failed to update secret"
	loginFailedMessage = "Failed to sign in"
	csrfFailedMessage  = "Invalid or missing CSRF token, reload the page and try again"

	maxMaskLength = 12
)

// Handler serves the UI pages.
type Handler struct {
	secretsUseCase secretsUseCase.SecretsUseCase
	tokenUseCase   authUseCase.TokenUseCase
	authenticator  *authHTTP.Authenticator
	policy         authDomain.AccessPolicy
	cookieSecure   bool
	pages          map[string]*template.Template
	logger         *slog.Logger
}

// NewHandler parses the embedded templates and creates a Handler.
func NewHandler(
	secretsUseCase secretsUseCase.SecretsUseCase,
	tokenUseCase authUseCase.TokenUseCase,
	authenticator *authHTTP.Authenticator,
	policy authDomain.AccessPolicy,
	cookieSecure bool,
	logger *slog.Logger,
) *Handler {
	funcMap := template.FuncMap{
		"mask":       mask,
		"formatTime": formatTime,
	}

	base := template.Must(template.New("").Funcs(funcMap).ParseFS(content, "templates/base.html"))

	pages := make(map[string]*template.Template, 3)
	for _, page := range []string{loginPage, viewPage, editPage} {
		clone := template.Must(base.Clone())
		pages[page] = template.Must(clone.ParseFS(content, "templates/"+page))
	}

	return &Handler{
		secretsUseCase: secretsUseCase,
		tokenUseCase:   tokenUseCase,
		authenticator:  authenticator,
		policy:         policy,
		cookieSecure:   cookieSecure,
		pages:          pages,
		logger:         logger,
	}
}

// secretView is one row of the read-only table.
type secretView struct {
	Key   string
	Value string
}

// rowView is one row of the edit form.
type rowView struct {
	Index int
	editor.Row
}

// pageData is the template input shared by all pages.
type pageData struct {
	CSRFToken  string
	ClientName string
	Error      string
	Details    string
	Notice     string
	Warning    string
	Loaded     bool
	Secrets    []secretView
	VersionID  string
	CreatedAt  time.Time
	Rows       []rowView
}

func (d *pageData) setDocument(doc secretsDomain.Document) {
	d.Loaded = true
	d.Secrets = make([]secretView, 0, len(doc))
	for _, key := range doc.Keys() {
		d.Secrets = append(d.Secrets, secretView{Key: key, Value: doc[key]})
	}
}

func (d *pageData) setRows(rows []editor.Row) {
	d.Rows = make([]rowView, len(rows))
	for i, row := range rows {
		d.Rows[i] = rowView{Index: i, Row: row}
	}
}

// RequireSession authenticates the session cookie and enforces the access policy.
// Visitors without a usable session are sent to the login page.
func (h *Handler) RequireSession(c *gin.Context) {
	client, err := h.authenticator.Authenticate(c.Request)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUnauthorized) {
			h.clearSessionCookie(c)
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		data := h.newPageData(c)
		h.fail(c, loginPage, data, err, loginFailedMessage)
		c.Abort()
		return
	}

	if !h.policy.Allows(client) {
		data := h.newPageData(c)
		data.ClientName = client.Name
		h.fail(c, viewPage, data, authDomain.ErrAccessDenied, loginFailedMessage)
		c.Abort()
		return
	}

	c.Request = c.Request.WithContext(authHTTP.WithClient(c.Request.Context(), client))
	c.Next()
}

// LoginPageHandler renders the sign-in form.
// GET /login
func (h *Handler) LoginPageHandler(c *gin.Context) {
	h.render(c, http.StatusOK, loginPage, h.newPageData(c))
}

// LoginHandler exchanges the posted client credentials for a session cookie.
// POST /login
func (h *Handler) LoginHandler(c *gin.Context) {
	data := h.newPageData(c)
	if !validateCSRF(c.Request) {
		h.csrfFailed(c, loginPage, data)
		return
	}

	req := authDTO.IssueTokenRequest{
		ClientID:     strings.TrimSpace(c.PostForm("client_id")),
		ClientSecret: c.PostForm("client_secret"),
	}
	if err := req.Validate(); err != nil {
		h.fail(c, loginPage, data, customValidation.WrapValidationError(err), loginFailedMessage)
		return
	}

	output, err := h.tokenUseCase.Issue(c.Request.Context(), req.ToInput())
	if err != nil {
		h.fail(c, loginPage, data, err, loginFailedMessage)
		return
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     authHTTP.SessionCookieName,
		Value:    output.PlainToken,
		Path:     "/",
		Expires:  output.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	c.Redirect(http.StatusSeeOther, "/")
}

// LogoutHandler revokes the session token and clears the cookie.
// POST /logout
func (h *Handler) LogoutHandler(c *gin.Context) {
	if !validateCSRF(c.Request) {
		h.csrfFailed(c, loginPage, h.newPageData(c))
		return
	}

	if err := h.authenticator.Revoke(c.Request.Context(), c.Request); err != nil {
		h.logger.Warn("failed to revoke session token", slog.Any("error", err))
	}
	h.clearSessionCookie(c)
	c.Redirect(http.StatusSeeOther, "/login")
}

// ViewHandler renders the read-only secrets table.
// GET /
func (h *Handler) ViewHandler(c *gin.Context) {
	data := h.newPageData(c)

	doc, err := h.secretsUseCase.Get(c.Request.Context())
	if err != nil {
		h.fail(c, viewPage, data, err, readFailedMessage)
		return
	}

	data.setDocument(doc.Secrets)
	data.VersionID = doc.VersionID
	data.CreatedAt = doc.CreatedAt
	h.render(c, http.StatusOK, viewPage, data)
}

// EditPageHandler snapshots the current document into an edit form.
// GET /edit
func (h *Handler) EditPageHandler(c *gin.Context) {
	data := h.newPageData(c)

	doc, err := h.secretsUseCase.Get(c.Request.Context())
	if err != nil {
		h.fail(c, viewPage, data, err, readFailedMessage)
		return
	}

	session := editor.NewSession(doc.Secrets)
	if err := session.Enter(); err != nil {
		h.fail(c, viewPage, data, err, readFailedMessage)
		return
	}

	data.setRows(session.Rows())
	data.VersionID = doc.VersionID
	h.render(c, http.StatusOK, editPage, data)
}

// EditActionHandler applies one edit action to the posted rows.
// POST /edit
func (h *Handler) EditActionHandler(c *gin.Context) {
	data := h.newPageData(c)
	if !validateCSRF(c.Request) {
		h.csrfFailed(c, viewPage, data)
		return
	}

	if err := c.Request.ParseForm(); err != nil {
		h.fail(c, viewPage, data, errMalformedForm, saveFailedMessage)
		return
	}

	rows, err := parseRows(c.Request.PostForm)
	if err != nil {
		h.fail(c, viewPage, data, err, saveFailedMessage)
		return
	}
	data.VersionID = c.PostForm(fieldVersion)

	session := editor.ResumeEditing(nil, rows)

	action, index, err := parseAction(c.PostForm(fieldAction))
	if err == nil {
		switch action {
		case actionAdd:
			err = session.AddRow()
		case actionDelete:
			err = session.ToggleDelete(index)
		case actionRemove:
			err = session.RemoveRow(index)
		case actionCancel:
			_ = session.Cancel()
			c.Redirect(http.StatusSeeOther, "/")
			return
		case actionSave:
			h.save(c, data, session)
			return
		}
	}

	data.setRows(session.Rows())
	if err != nil {
		h.fail(c, editPage, data, err, saveFailedMessage)
		return
	}
	h.render(c, http.StatusOK, editPage, data)
}

// save writes the session payload. A failed save re-renders the form with the rows
// as posted so the user can retry or cancel.
func (h *Handler) save(c *gin.Context, data pageData, session *editor.Session) {
	var result *secretsDomain.WriteResult
	saver := editor.SaverFunc(func(ctx context.Context, secrets secretsDomain.Document) (secretsDomain.Document, error) {
		written, err := h.secretsUseCase.Set(ctx, &secretsDomain.SetInput{Secrets: secrets})
		if err != nil {
			return nil, err
		}
		result = written
		return written.Secrets, nil
	})

	if err := session.Save(c.Request.Context(), saver); err != nil {
		data.setRows(session.Rows())
		h.fail(c, editPage, data, err, saveFailedMessage)
		return
	}

	data.setDocument(session.Document())
	data.VersionID = result.VersionID
	data.CreatedAt = result.CreatedAt
	data.Notice = "Secrets saved"
	data.Warning = result.Warning
	h.render(c, http.StatusOK, viewPage, data)
}

func (h *Handler) newPageData(c *gin.Context) pageData {
	data := pageData{CSRFToken: csrfToken(c, h.cookieSecure)}
	if client, ok := authHTTP.GetClient(c.Request.Context()); ok {
		data.ClientName = client.Name
	}
	return data
}

// fail logs err and renders page with the message a caller may see.
func (h *Handler) fail(c *gin.Context, page string, data pageData, err error, internalMessage string) {
	status, body := httputil.Classify(err, internalMessage)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(c.Request.Context(), level, "ui request failed",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status_code", status),
		slog.Any("error", err),
	)

	data.Error = body.Error
	data.Details = body.Details
	h.render(c, status, page, data)
}

func (h *Handler) csrfFailed(c *gin.Context, page string, data pageData) {
	h.logger.Warn("csrf validation failed", slog.String("path", c.Request.URL.Path))
	data.Error = csrfFailedMessage
	h.render(c, http.StatusForbidden, page, data)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     authHTTP.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// render executes a page template into a buffer so a template failure never leaves
// a half-written page behind.
func (h *Handler) render(c *gin.Context, status int, page string, data pageData) {
	tmpl, ok := h.pages[page]
	if !ok {
		h.logger.Error("template not found", slog.String("page", page))
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		h.logger.Error("template render error", slog.String("page", page), slog.Any("error", err))
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// mask hides a value behind at most maxMaskLength asterisks.
func mask(value string) string {
	return strings.Repeat("*", min(utf8.RuneCountInString(value), maxMaskLength))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
