package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/config"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/indexed"
	"github.com/ped-dyn-emp/PeTrack-sub002/pkg/synapse"

	mqtt "github.com/soypat/natiu-mqtt"
)

const (
	mqtt_connect_timeout = 5 * time.Second
	mqtt_keepalive_sec   = 30
)

// Publishes every frame of detections as a synapse command
func publisher(
	ctx context.Context,
	parent_logger *slog.Logger,
	cfg *config.ConfigFile,
	run uuid.UUID,
	in_chan <-chan indexed.Indexed[Detections],
) error {
	logger := parent_logger.With("coroutine", "publisher")
	mqtt_cfg := cfg.Output.MQTT

	client := mqtt.NewClient(
		mqtt.ClientConfig{
			Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 2048)},
			OnPub: func(pubHead mqtt.Header, varPub mqtt.VariablesPublish, r io.Reader) error {
				message, err := io.ReadAll(r)
				if err != nil {
					return err
				}
				logger.Debug("Recieved", "header", pubHead.String(), "topic", string(varPub.TopicName), "message", message)
				return nil
			},
		})

	connection, err := net.Dial("tcp", mqtt_cfg.Address)
	if err != nil {
		logger.Error("Can't reach broker", "address", mqtt_cfg.Address, "error", err)
		return fmt.Errorf("%w: %w", ERR_BAD_OUTPUT, err)
	}

	client_id := fmt.Sprintf("%s-%s", mqtt_cfg.ClientID, run.String()[:8])
	var vars mqtt.VariablesConnect
	vars.SetDefaultMQTT([]byte(client_id))
	vars.KeepAlive = mqtt_keepalive_sec
	if mqtt_cfg.Username != "" {
		vars.Username = []byte(mqtt_cfg.Username)
		vars.Password = []byte(mqtt_cfg.Password)
	}

	connection_ctx, cancel := context.WithTimeout(ctx, mqtt_connect_timeout)
	err = client.Connect(connection_ctx, connection, &vars)
	cancel()
	if err != nil {
		connection.Close()
		logger.Error("Can't connect to broker", "address", mqtt_cfg.Address, "error", err)
		return fmt.Errorf("%w: %w", ERR_BAD_OUTPUT, err)
	}
	defer client.Disconnect(ERR_OUTPUT_CLOSED)
	logger.Info("Connected", "address", mqtt_cfg.Address, "client id", client_id, "topic", mqtt_cfg.Topic)

	flags, err := mqtt.NewPublishFlags(mqtt.QoS0, false, false)
	if err != nil {
		return err
	}
	topic := mqtt.VariablesPublish{TopicName: []byte(mqtt_cfg.Topic)}

	ping := time.NewTicker(mqtt_keepalive_sec * time.Second / 2)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cancelled by context")
			return context.Canceled
		case <-ping.C:
			ping_ctx, cancel := context.WithTimeout(ctx, mqtt_connect_timeout)
			err := client.Ping(ping_ctx)
			cancel()
			if err != nil {
				logger.Error("Broker stopped answering", "error", err)
				return fmt.Errorf("%w: %w", ERR_BAD_OUTPUT, err)
			}
		case frame, ok := <-in_chan:
			if !ok {
				logger.Debug("Input closed")
				return nil
			}
			d := frame.Value()
			payload, err := synapse.NewDetections(
				client_id, run, frame.Id(), frame.Time(),
				d.Method.String(), d.Points).ToPayload()
			if err != nil {
				logger.Error("Can't encode detections", "frame", frame.Id(), "error", err)
				continue
			}
			if err := client.PublishPayload(flags, topic, payload); err != nil {
				logger.Error("Can't publish", "frame", frame.Id(), "error", err)
				return fmt.Errorf("%w: %w", ERR_BAD_OUTPUT, err)
			}
		}
	}
}
