package main

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	framework "github.com/dfiliuk-tech/hw-2"
	"github.com/dfiliuk-tech/hw-2/pkg/auth"
	"github.com/dfiliuk-tech/hw-2/pkg/httpmsg"
	"github.com/dfiliuk-tech/hw-2/pkg/metrics"
	"github.com/dfiliuk-tech/hw-2/pkg/session"
)

const (
	apiVersion      = "1.0.0"
	loginErrorFlash = "login_error"
)

// recorder receives the demo's business counters.
type recorder interface {
	IncLogin(result string)
	IncCSRFFailure()
}

type nopRecorder struct{}

func (nopRecorder) IncLogin(string) {}
func (nopRecorder) IncCSRFFailure() {}

var pages = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html><head><title>{{.Title}}</title></head>
<body>
{{if .User}}<nav><a href="/">Home</a> <a href="/contact">Contact</a> <a href="/admin">Admin</a> <a href="/logout">Logout ({{.User.Username}})</a></nav>{{end}}
<h1>{{.Title}}</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if .Message}}<p>{{.Message}}</p>{{end}}
{{if .CSRF}}<form method="post" action="{{.Action}}">
<input type="hidden" name="{{.CSRFName}}" value="{{.CSRF}}">
{{range .Fields}}<label>{{.}} <input name="{{.}}"{{if eq . "password"}} type="password"{{end}}></label>
{{end}}<button type="submit">Submit</button>
</form>{{end}}
{{if .Users}}<table>{{range .Users}}<tr><td>{{.Username}}</td><td>{{range .Roles}}{{.}} {{end}}</td></tr>{{end}}</table>{{end}}
</body></html>
`))

// page is the view model of every demo page.
type page struct {
	User     *auth.User
	Title    string
	Error    string
	Message  string
	Action   string
	CSRFName string
	CSRF     string
	Fields   []string
	Users    []demoUser
}

type demoUser struct {
	Username string
	Roles    []string
}

func render(status int, p page) (*httpmsg.Response, error) {
	var buf bytes.Buffer
	if err := pages.Execute(&buf, p); err != nil {
		return nil, err
	}
	return httpmsg.NewResponse(status,
		httpmsg.WithHeaderValue("Content-Type", "text/html; charset=utf-8"),
		httpmsg.WithBodyString(buf.String()),
	)
}

func redirect(location string) (*httpmsg.Response, error) {
	return httpmsg.NewResponse(http.StatusFound, httpmsg.WithHeaderValue("Location", location))
}

// controllers holds the demo application's actions.
type controllers struct {
	security *framework.Security
	auth     auth.Provider
	metrics  recorder
	now      func() time.Time
}

func newControllers(security *framework.Security, provider auth.Provider, m *metrics.ServerMetrics) *controllers {
	c := &controllers{
		security: security,
		auth:     provider,
		metrics:  nopRecorder{},
		now:      time.Now,
	}
	if m != nil {
		c.metrics = m
	}
	return c
}

// register adds every controller to registry under the ids used by routes.yaml.
func (c *controllers) register(registry *framework.Registry) {
	registry.Register("auth", framework.ActionMap{
		"loginForm": c.loginForm,
		"login":     c.login,
		"logout":    c.logout,
	})
	registry.Register("home", framework.ActionMap{
		"index": c.home,
	})
	registry.Register("contact", framework.ActionMap{
		"show": c.contact,
	})
	registry.Register("api", framework.ActionMap{
		"status": c.apiStatus,
		"update": c.apiUpdate,
	})
	registry.Register("admin", framework.ActionMap{
		"dashboard": c.adminDashboard,
		"action":    c.adminAction,
	})
}

func (c *controllers) loginForm(ctx context.Context, req *framework.ServerRequest) (any, error) {
	token, err := c.security.GenerateCSRFToken(ctx)
	if err != nil {
		return nil, err
	}
	msg, _ := req.Attribute("error", "").(string)
	return render(http.StatusOK, page{
		Title:    "Login",
		Error:    msg,
		Action:   "/login",
		CSRFName: c.security.CSRFTokenName(),
		CSRF:     token,
		Fields:   []string{"username", "password"},
	})
}

func (c *controllers) login(ctx context.Context, req *framework.ServerRequest) (any, error) {
	if !c.security.ValidateCSRFToken(ctx, req.FormValue(c.security.CSRFTokenName())) {
		c.metrics.IncCSRFFailure()
		return c.loginError(ctx, "Invalid CSRF token")
	}

	_, err := c.auth.Authenticate(ctx, req.FormValue("username"), req.FormValue("password"))
	switch {
	case err == nil:
		c.metrics.IncLogin(metrics.LoginSuccess)
		return redirect("/")
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.metrics.IncLogin(metrics.LoginFailure)
		return c.loginError(ctx, "Invalid username or password")
	default:
		return nil, err
	}
}

func (c *controllers) loginError(ctx context.Context, msg string) (any, error) {
	sess := session.FromContext(ctx)
	if sess == nil {
		return nil, framework.ErrNoSession
	}
	sess.Flash(loginErrorFlash, msg)
	return redirect("/login")
}

func (c *controllers) logout(ctx context.Context, _ *framework.ServerRequest) (any, error) {
	if err := c.auth.Logout(ctx); err != nil {
		return nil, err
	}
	return redirect("/login")
}

func (c *controllers) home(_ context.Context, req *framework.ServerRequest) (any, error) {
	user := framework.CurrentUser(req)
	return render(http.StatusOK, page{
		User:    user,
		Title:   "Home",
		Message: "Welcome, " + user.Username + "!",
	})
}

func (c *controllers) contact(_ context.Context, req *framework.ServerRequest) (any, error) {
	return render(http.StatusOK, page{
		User:    framework.CurrentUser(req),
		Title:   "Contact",
		Message: "Write to us at hello@example.com.",
	})
}

func (c *controllers) apiStatus(context.Context, *framework.ServerRequest) (any, error) {
	return map[string]any{
		"status":    "OK",
		"version":   apiVersion,
		"timestamp": c.now().Unix(),
	}, nil
}

func (c *controllers) apiUpdate(_ context.Context, req *framework.ServerRequest) (any, error) {
	status := c.security.StripTags(req.FormValue("status"))
	if status == "" {
		status = "unknown"
	}
	return map[string]any{
		"status":    status,
		"updated":   true,
		"timestamp": c.now().Unix(),
		"received":  req.ParsedBody(),
	}, nil
}

func (c *controllers) adminDashboard(ctx context.Context, req *framework.ServerRequest) (any, error) {
	if !c.security.VerifyAuthorization(ctx, req, auth.RoleAdmin) {
		return render(http.StatusForbidden, page{
			User:    framework.CurrentUser(req),
			Title:   "Access Denied",
			Message: "You do not have permission to access this page.",
		})
	}

	token, err := c.security.GenerateCSRFToken(ctx)
	if err != nil {
		return nil, err
	}
	return render(http.StatusOK, page{
		User:     framework.CurrentUser(req),
		Title:    "Admin",
		Action:   "/admin/action",
		CSRFName: c.security.CSRFTokenName(),
		CSRF:     token,
		Fields:   []string{"action"},
		Users: []demoUser{
			{Username: "admin", Roles: []string{auth.RoleAdmin, auth.RoleUser}},
			{Username: "user", Roles: []string{auth.RoleUser}},
			{Username: "editor", Roles: []string{"ROLE_EDITOR", auth.RoleUser}},
		},
	})
}

func (c *controllers) adminAction(ctx context.Context, req *framework.ServerRequest) (any, error) {
	user := framework.CurrentUser(req)
	if !c.security.VerifyAuthorization(ctx, req, auth.RoleAdmin) {
		return render(http.StatusForbidden, page{
			User:    user,
			Title:   "Access Denied",
			Message: "You do not have permission to perform this action.",
		})
	}

	if !c.security.ValidateCSRFToken(ctx, req.FormValue(c.security.CSRFTokenName())) {
		c.metrics.IncCSRFFailure()
		return render(http.StatusBadRequest, page{
			User:    user,
			Title:   "Bad Request",
			Message: "Invalid CSRF token.",
		})
	}

	return render(http.StatusOK, page{
		User:    user,
		Title:   "Action Result",
		Message: "Action '" + req.FormValue("action") + "' completed successfully.",
	})
}
