package log

// HostModule and HostLogFunc name the host import used for guest logging.
const (
	HostModule  = "jsonffi_host"
	HostLogFunc = "log_message"
)
