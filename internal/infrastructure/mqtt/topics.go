package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the bluewatch topic hierarchy.
//
// Outbound:
//
//	bluewatch/presence/{mac}   retained per-device presence state
//	bluewatch/event/{new|lost} presence transition events
//	bluewatch/system/status    watcher online/offline status (LWT)
//
// Inbound:
//
//	bluewatch/sighting/{agent} per-cycle sightings from remote scan agents
const (
	// TopicPrefix is the base for all bluewatch topics.
	TopicPrefix = "bluewatch"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "bluewatch/system"
)

// Topics provides builders for bluewatch MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.Presence("AA:BB:CC:DD:EE:FF")
//	// Returns: "bluewatch/presence/aa-bb-cc-dd-ee-ff"
type Topics struct{}

// Presence returns the retained per-device presence state topic.
// Colons in the MAC are replaced so the address stays a single topic level.
//
// Example: bluewatch/presence/aa-bb-cc-dd-ee-ff
func (Topics) Presence(mac string) string {
	return fmt.Sprintf("%s/presence/%s", TopicPrefix, macTopicSegment(mac))
}

// Event returns the topic for presence transition events.
//
// Example: bluewatch/event/new
func (Topics) Event(eventType string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefix, strings.ToLower(eventType))
}

// Sighting returns the inbound sighting topic for a named scan agent.
//
// Example: bluewatch/sighting/garage
func (Topics) Sighting(agent string) string {
	return fmt.Sprintf("%s/sighting/%s", TopicPrefix, agent)
}

// AllSightings returns a pattern matching sightings from every scan agent.
//
// Pattern: bluewatch/sighting/+
func (Topics) AllSightings() string {
	return fmt.Sprintf("%s/sighting/+", TopicPrefix)
}

// SystemStatus returns the watcher status topic (also the LWT topic).
//
// Example: bluewatch/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// macTopicSegment converts a MAC address into a safe single topic level.
func macTopicSegment(mac string) string {
	return strings.ToLower(strings.ReplaceAll(mac, ":", "-"))
}
