package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Status fetches the headline CPU/RAM/disk/health snapshot.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var out Status
	err := c.get(ctx, "/status", nil, &out)
	return out, err
}

func (c *Client) Predict(ctx context.Context) (Prediction, error) {
	var out Prediction
	err := c.get(ctx, "/api/ai/predict", nil, &out)
	return out, err
}

func (c *Client) SecurityScan(ctx context.Context) (SecurityScan, error) {
	var out SecurityScan
	err := c.get(ctx, "/api/security/scan", nil, &out)
	return out, err
}

func (c *Client) NetworkStats(ctx context.Context) (NetworkSample, error) {
	var out NetworkSample
	err := c.get(ctx, "/api/network-stats", nil, &out)
	return out, err
}

func (c *Client) SystemSpecs(ctx context.Context) (SystemSpecs, error) {
	var out SystemSpecs
	err := c.get(ctx, "/api/system-specs", nil, &out)
	return out, err
}

func (c *Client) LastRecords(ctx context.Context) ([]Record, error) {
	var out []Record
	err := c.get(ctx, "/api/last-records", nil, &out)
	return out, err
}

func (c *Client) Forecast(ctx context.Context) (Forecast, error) {
	var out Forecast
	err := c.get(ctx, "/api/ai/forecast", nil, &out)
	return out, err
}

func (c *Client) FirewallStatus(ctx context.Context) (FirewallStatus, error) {
	var out FirewallStatus
	err := c.get(ctx, "/api/security/firewall-status", nil, &out)
	return out, err
}

func (c *Client) OpenPorts(ctx context.Context) ([]OpenPort, error) {
	var out []OpenPort
	err := c.get(ctx, "/api/security/open-ports", nil, &out)
	return out, err
}

func (c *Client) ScanJunk(ctx context.Context) (JunkScan, error) {
	var out JunkScan
	err := c.get(ctx, "/api/deep-clean/scan", nil, &out)
	return out, err
}

func (c *Client) Partitions(ctx context.Context) ([]Partition, error) {
	var out []Partition
	err := c.get(ctx, "/api/disk/partitions", nil, &out)
	return out, err
}

func (c *Client) Processes(ctx context.Context) ([]Process, error) {
	var out []Process
	err := c.get(ctx, "/api/apps/processes", nil, &out)
	return out, err
}

func (c *Client) StartupApps(ctx context.Context) ([]StartupApp, error) {
	var out []StartupApp
	err := c.get(ctx, "/api/apps/startup", nil, &out)
	return out, err
}

func (c *Client) InstalledApps(ctx context.Context) ([]InstalledApp, error) {
	var out []InstalledApp
	err := c.get(ctx, "/api/apps/installed", nil, &out)
	return out, err
}

// LargeFiles lists big files, limited to mount when it is not empty.
func (c *Client) LargeFiles(ctx context.Context, mount string) ([]LargeFile, error) {
	var q url.Values
	if mount != "" {
		q = url.Values{"path": {mount}}
	}
	var out []LargeFile
	err := c.get(ctx, "/api/large-files", q, &out)
	return out, err
}

func (c *Client) KillProcess(ctx context.Context, pid int) (ActionResult, error) {
	var out ActionResult
	err := c.post(ctx, "/api/apps/kill", url.Values{"pid": {strconv.Itoa(pid)}}, nil, &out)
	return out, err
}

func (c *Client) DeleteLargeFile(ctx context.Context, path string) (ActionResult, error) {
	var out ActionResult
	err := c.post(ctx, "/api/large-files/delete", url.Values{"path": {path}}, nil, &out)
	return out, err
}

func (c *Client) ToggleStartup(ctx context.Context, name string, enabled bool) (ActionResult, error) {
	var out ActionResult
	path := "/api/startup-apps/" + url.PathEscape(name) + "/toggle"
	err := c.post(ctx, path, url.Values{"enabled": {strconv.FormatBool(enabled)}}, nil, &out)
	return out, err
}

func (c *Client) EnableFirewall(ctx context.Context) (ActionResult, error) {
	var out ActionResult
	err := c.post(ctx, "/api/security/enable-firewall", nil, nil, &out)
	return out, err
}

// Uninstall launches the uninstaller named by an InstalledApp's UninstallString.
func (c *Client) Uninstall(ctx context.Context, command string) (ActionResult, error) {
	var out ActionResult
	err := c.post(ctx, "/api/apps/uninstall", nil, map[string]string{"command": command}, &out)
	return out, err
}

func (c *Client) BoostRAM(ctx context.Context) (ActionResult, error) {
	var out ActionResult
	err := c.post(ctx, "/api/boost-ram", nil, nil, &out)
	return out, err
}

// SetAutoMode starts or stops the backend's automatic optimizer.
func (c *Client) SetAutoMode(ctx context.Context, on bool) (ActionResult, error) {
	path := "/api/ai/auto-mode/stop"
	if on {
		path = "/api/ai/auto-mode/start"
	}
	var out ActionResult
	err := c.post(ctx, path, nil, nil, &out)
	return out, err
}

func (c *Client) CleanJunk(ctx context.Context) (ActionResult, error) {
	var out ActionResult
	err := c.post(ctx, "/api/deep-clean/clean", nil, nil, &out)
	return out, err
}

func (c *Client) OptimizeNow(ctx context.Context) (ActionResult, error) {
	var out ActionResult
	err := c.post(ctx, "/api/ai/optimize-now", nil, nil, &out)
	return out, err
}

// Me returns the user behind the current token. It doubles as the
// session heartbeat: a 401 here ends the session.
func (c *Client) Me(ctx context.Context) (Me, error) {
	var out Me
	q := url.Values{"token": {c.token()}}
	err := c.do(ctx, request{method: http.MethodGet, path: "/api/auth/me", query: q, auth: true}, &out)
	return out, err
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	return c.auth(ctx, "/api/auth/login", url.Values{"email": {email}, "username": {email}, "password": {password}})
}

// Register creates an account. Most backends do not return a token here.
func (c *Client) Register(ctx context.Context, name, email, password string) (AuthResult, error) {
	return c.auth(ctx, "/api/auth/register", url.Values{"name": {name}, "email": {email}, "password": {password}})
}

// SendOTP asks the backend to send a one-time code to an email or phone.
func (c *Client) SendOTP(ctx context.Context, identifier string) (AuthResult, error) {
	return c.auth(ctx, "/api/auth/otp/send", url.Values{"identifier": {identifier}})
}

func (c *Client) VerifyOTP(ctx context.Context, identifier, code string) (AuthResult, error) {
	return c.auth(ctx, "/api/auth/otp/verify", url.Values{"identifier": {identifier}, "otp": {code}})
}

// GoogleLogin exchanges a Google ID token for a session token.
func (c *Client) GoogleLogin(ctx context.Context, idToken string) (AuthResult, error) {
	return c.auth(ctx, "/api/auth/google", url.Values{"token": {idToken}})
}

// auth calls an unauthenticated auth endpoint. A 401 here is a failed
// login, reported as *Error with the backend's detail, not a lost session.
func (c *Client) auth(ctx context.Context, path string, q url.Values) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, request{method: http.MethodPost, path: path, query: q, public: true}, &out)
	return out, err
}
