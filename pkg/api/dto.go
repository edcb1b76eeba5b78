package api

type TargetSpec struct {
	Name string `json:"name" yaml:"name"`
	Ext  string `json:"ext" yaml:"ext"`
}

type PingSpec struct {
	Name string `json:"name" yaml:"name"`
	ID   string `json:"id" yaml:"id"`
}

type TriggerRequest struct {
	RunName    string       `json:"run_name" binding:"required"`
	Project    string       `json:"project" binding:"required"`
	Targets    []TargetSpec `json:"targets,omitempty"`
	Folders    []string     `json:"folders,omitempty"`
	Ping       []PingSpec   `json:"ping,omitempty"`
	Invalidate bool         `json:"invalidate,omitempty"`
	Forced     bool         `json:"forced,omitempty"`
}

type TriggerResponse struct {
	RunUUID string `json:"run_uuid"`
}

type RunBrief struct {
	ID        uint   `json:"id"`
	RunUUID   string `json:"run_uuid"`
	RunName   string `json:"run_name"`
	Project   string `json:"project"`
	Status    string `json:"status"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time,omitempty"`
}

type RunDetail struct {
	RunBrief
	ErrorText  string `json:"error_text,omitempty"`
	ReportJSON string `json:"report_json,omitempty"`
}
