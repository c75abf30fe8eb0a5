// Package mqtt provides MQTT client connectivity for bluewatch.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Presence state and event publishing with QoS guarantees
//   - Sighting subscriptions from remote scan agents
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Topic Hierarchy
//
// Outbound topics carry the watcher's view of the world:
//
//	bluewatch/presence/{mac}   retained per-device state ("present"/"absent")
//	bluewatch/event/{new|lost} transition events, not retained
//	bluewatch/system/status    watcher online/offline (retained, LWT)
//
// Inbound topics let headless scan agents on other hosts feed the same
// tracker:
//
//	bluewatch/sighting/{agent} one JSON observation per message
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllSightings(), 1,
//	    func(topic string, payload []byte) error {
//	        return source.Ingest(payload)
//	    })
package mqtt
