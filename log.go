package alohaplayer

import (
	"github.com/lanikai/alohaplayer/internal/logging"
)

var log = logging.DefaultLogger.WithTag("player")
