package server

import "fmt"

// infoReplication renders the INFO replication body (spec §6).
func (e *Engine) infoReplication() string {
	role := "master"
	var offset int64
	if e.Config.IsReplica() {
		role = "slave"
	} else {
		offset = e.MasterReplOffset()
	}
	return fmt.Sprintf("role:%s\r\nmaster_replid:%s\r\nmaster_repl_offset:%d\r\n", role, e.ReplID(), offset)
}
