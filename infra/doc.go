// Package infra contains technical adapters such as the MQTT client, the
// metrics sinks and the journal stores. These packages should depend only
// on the interfaces defined in the core packages.
package infra
