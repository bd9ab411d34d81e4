package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RefreshDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pexip_refresh_duration_seconds",
		Help:    "单次刷新耗时",
		Buckets: prometheus.DefBuckets,
	})

	RefreshErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pexip_refresh_errors_total",
		Help: "刷新失败次数",
	})

	Devices = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pexip_conferencing_nodes",
		Help: "最近一次刷新得到的会议节点数",
	})

	ActiveConferences = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pexip_active_conferences",
		Help: "最近一次刷新得到的会议数",
	})

	ActiveParticipants = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pexip_active_participants",
		Help: "最近一次刷新得到的参会者数",
	})

	Commands = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pexip_commands_total",
		Help: "控制命令执行次数",
	}, []string{"command", "result"})

	ReportsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pexip_reports_sent_total",
		Help: "发送的报表邮件数",
	}, []string{"report"})
)

// MustRegister 注册指标，可在 main 中调用。
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(RefreshDuration, RefreshErrors, Devices, ActiveConferences, ActiveParticipants, Commands, ReportsSent)
}

// CommandResult 把命令执行结果转换成标签值。
func CommandResult(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
