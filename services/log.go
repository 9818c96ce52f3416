package services

import "github.com/thriftly/thriftly/utils"

// logWarn writes through the global sugared logger when it is initialized;
// tests run without one.
func logWarn(msg string, kv ...interface{}) {
	if utils.Sugar != nil {
		utils.Sugar.Warnw(msg, kv...)
	}
}
