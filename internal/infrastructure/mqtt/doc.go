// Package mqtt provides the optional run status notifier.
//
// It wraps paho.mqtt.golang as a publish-only client: after each pipeline
// run the scheduler publishes the run summary JSON to a status topic as a
// retained message, so dashboards and home automation setups watching the
// broker always see the latest sync state.
//
// # Failure model
//
// Status publishing is best-effort. A failed publish is logged and never
// fails a run; the next run publishes fresh state. Auto-reconnect is
// delegated to the paho library.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Warn("status notifier unavailable", "error", err)
//	}
//	defer client.Close()
//
//	_ = client.PublishStatus(payload)
package mqtt
