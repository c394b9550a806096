package api

import (
	"time"

	"github.com/AdguardTeam/golibs/log"
	"github.com/go-co-op/gocron"

	"github.com/streamgate/corebridge/internal/diag"
)

// StartJobs registers the periodic background work the admin surface owns:
// a once-a-second traffic tick broadcast to SSE subscribers, a log-file
// size monitor, and hourly stats persistence, the same gocron.Scheduler
// shape main.go builds around proxy.UpdateBlockedDomains/MonitorLogFile/
// SM.SaveStats.
func (s *Server) StartJobs(logPath, statsPath string) *gocron.Scheduler {
	sched := gocron.NewScheduler(time.UTC)

	if _, err := sched.Every(1).Second().Do(s.tickTraffic); err != nil {
		log.Error("api: can't start traffic ticker: %s", err)
	}
	if logPath != "" {
		if _, err := sched.Every(1).Minute().Do(func() { diag.MonitorLogFile(logPath) }); err != nil {
			log.Error("api: can't start log file monitor: %s", err)
		}
	}
	if _, err := sched.Every(1).Hour().Do(func() { _ = s.stats.Save(statsPath) }); err != nil {
		log.Error("api: can't start stats periodic save: %s", err)
	}

	sched.StartAsync()
	return sched
}

func (s *Server) tickTraffic() {
	up, down := s.bridge.Traffic().Tick()
	if up == 0 && down == 0 {
		return
	}
	s.events.publish("traffic-update", struct {
		Up   uint64 `json:"up"`
		Down uint64 `json:"down"`
	}{Up: up, Down: down})
}
