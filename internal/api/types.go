package api

import "encoding/json"

// Risk levels reported by the prediction endpoint.
const (
	RiskCritical = "CRITICAL"
	RiskWarning  = "WARNING"
	RiskStable   = "STABLE"
)

// SecurityClean is the scan status when nothing suspicious was found.
const SecurityClean = "CLEAN"

// Status is the headline system snapshot.
type Status struct {
	CPU         float64 `json:"cpu" yaml:"cpu"`
	RAM         float64 `json:"ram" yaml:"ram"`
	Disk        float64 `json:"disk" yaml:"disk"`
	HealthScore float64 `json:"health_score" yaml:"health_score"`
}

// Prediction is the AI risk assessment.
type Prediction struct {
	RiskScore    float64 `json:"risk_score"`
	RiskLevel    string  `json:"risk_level"`
	IsAnomaly    bool    `json:"is_anomaly"`
	Explanation  string  `json:"explanation"`
	ExpertReport string  `json:"expert_report"`
}

// SecurityScan is the quick security check.
type SecurityScan struct {
	Status  string   `json:"status"`
	Threats []string `json:"threats,omitempty"`
}

// Clean reports whether the scan found nothing.
func (s SecurityScan) Clean() bool {
	return s.Status == SecurityClean
}

// NetworkSample is the current throughput.
type NetworkSample struct {
	UploadMbps   float64 `json:"upload_mbps"`
	DownloadMbps float64 `json:"download_mbps"`
}

// SystemSpecs describes the monitored machine.
type SystemSpecs struct {
	OS         string  `json:"os"`
	Processor  string  `json:"processor"`
	RAMTotalGB float64 `json:"ram_total_gb"`
}

// Record is one logged sample. The backend stores them as CSV, so every
// field arrives as a string.
type Record struct {
	Timestamp   string `json:"timestamp"`
	CPU         string `json:"cpu"`
	RAM         string `json:"ram"`
	Disk        string `json:"disk"`
	HealthScore string `json:"health_score"`
}

// Process is a running process.
type Process struct {
	PID      int     `json:"pid"`
	Name     string  `json:"name"`
	CPU      float64 `json:"cpu"`
	RAMMB    float64 `json:"ram_mb"`
	DiskIOMB float64 `json:"disk_io_mb"`
}

// StartupApp is an entry that launches at login.
type StartupApp struct {
	Name      string `json:"name"`
	Command   string `json:"command"`
	Location  string `json:"location"`
	Enabled   bool   `json:"enabled"`
	CanToggle bool   `json:"can_toggle"`
}

// InstalledApp is an uninstallable program.
type InstalledApp struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Version         string `json:"version"`
	UninstallString string `json:"uninstall_string"`
}

// Partition is a mounted filesystem.
type Partition struct {
	Device     string  `json:"device"`
	Mountpoint string  `json:"mountpoint"`
	FSType     string  `json:"fstype"`
	TotalGB    float64 `json:"total_gb"`
	UsedGB     float64 `json:"used_gb"`
	FreeGB     float64 `json:"free_gb"`
	Percent    float64 `json:"percent"`
}

// LargeFile is a file over the backend's size threshold.
type LargeFile struct {
	Path   string  `json:"path"`
	Name   string  `json:"name"`
	SizeMB float64 `json:"size_mb"`
}

// JunkFile is one removable temporary file.
type JunkFile struct {
	Path   string  `json:"path"`
	Name   string  `json:"name"`
	SizeMB float64 `json:"size_mb"`
}

// JunkScan summarizes removable temporary files. Files holds at most the
// first hundred entries; FileCount is the full count.
type JunkScan struct {
	FileCount   int        `json:"file_count"`
	TotalSizeMB float64    `json:"total_size_mb"`
	Files       []JunkFile `json:"files"`
}

// ForecastPoint is one predicted sample.
type ForecastPoint struct {
	Time         string  `json:"time"`
	PredictedCPU float64 `json:"predicted_cpu"`
	RiskLevel    string  `json:"risk_level"`
	// Confidence arrives preformatted, e.g. "92%".
	Confidence string `json:"confidence"`
}

// Forecast is the short-term CPU outlook.
type Forecast struct {
	CurrentTrend   string          `json:"current_trend"`
	Forecast       []ForecastPoint `json:"forecast"`
	Recommendation string          `json:"recommendation"`
}

// FirewallStatus reports whether the host firewall is on.
type FirewallStatus struct {
	Enabled bool `json:"enabled"`
}

// OpenPort is a listening port.
type OpenPort struct {
	Port    int    `json:"port"`
	Service string `json:"service"`
	Risk    string `json:"risk"`
}

// ActionResult is the reply to every mutating call.
type ActionResult struct {
	Success      bool       `json:"success"`
	Message      string     `json:"message"`
	FreedMB      float64    `json:"freed_mb,omitempty"`
	DeletedCount int        `json:"deleted_count,omitempty"`
	Log          []LogEntry `json:"log,omitempty"`
	// Error is set instead of Message by some failing endpoints.
	Error string `json:"error,omitempty"`

	// failed is set when the reply carried an explicit "success": false.
	failed bool
}

// UnmarshalJSON tells an explicit "success": false apart from a reply
// that has no success field at all.
func (r *ActionResult) UnmarshalJSON(data []byte) error {
	type plain ActionResult
	var aux struct {
		plain
		Success *bool `json:"success"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = ActionResult(aux.plain)
	r.Success = aux.Success != nil && *aux.Success
	r.failed = aux.Success != nil && !*aux.Success
	return nil
}

// Failure returns the backend's explanation when the action failed, or "".
// Several endpoints omit success entirely; those count as failed only when
// they carry an error field.
func (r ActionResult) Failure() string {
	switch {
	case r.Success:
		return ""
	case r.Error != "":
		return r.Error
	case r.failed && r.Message != "":
		return r.Message
	case r.failed:
		return "request failed"
	}
	return ""
}

// LogEntry is one step reported by the optimizer.
type LogEntry struct {
	Action  string `json:"action"`
	Details string `json:"details"`
	Status  string `json:"status"`
}

// AuthResult is the reply from the auth endpoints. Depending on the
// backend version the token arrives as access_token or token.
type AuthResult struct {
	AccessToken string `json:"access_token"`
	TokenField  string `json:"token"`
	Username    string `json:"username"`
	Detail      string `json:"detail"`
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	MockOTP     string `json:"mock_otp"`
}

// Token returns whichever token field the backend filled.
func (a AuthResult) Token() string {
	if a.AccessToken != "" {
		return a.AccessToken
	}
	return a.TokenField
}

// Me is the identity behind a token.
type Me struct {
	Username string `json:"username"`
}
