package poll

import (
	logging "github.com/inconshreveable/log15"

	"pollpulse.io/pollpulse/lib/common"
)

var log logging.Logger = logging.New("module", "poll")

func init() {
	SetLogging(common.DefaultLogLevel, common.DefaultLogHandler)
}

func SetLogging(level logging.Lvl, handler logging.Handler) {
	common.SetLogging(log, level, handler)
}
