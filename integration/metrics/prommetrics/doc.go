// Package prommetrics exports broadcast statistics to Prometheus.
//
//	c := prommetrics.NewCollector(prommetrics.WithNamespace("feeds"))
//	prometheus.MustRegister(c)
//
//	h := broadcast.New(src, 64, broadcast.WithName("ticks"))
//	w := h.Downgrade()
//	defer w.Close()
//	_ = c.Register(w)
//
// Every registered broadcast reports, labeled by stream name:
//
//	<ns>_broadcast_capacity
//	<ns>_broadcast_buffered_items
//	<ns>_broadcast_produced_items_total
//	<ns>_broadcast_source_polls_total
//	<ns>_broadcast_missed_items_total
//	<ns>_broadcast_handles{kind="strong|weak"}
//	<ns>_broadcast_parked_consumers
//	<ns>_broadcast_source_active
//	<ns>_broadcast_finished
//
// Broadcasts whose last strong handle was closed disappear from the output.
package prommetrics
