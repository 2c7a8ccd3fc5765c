// Package config provides configuration helpers for go-fivebar commands.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Default arm configuration.
const (
	DefaultBaud     = 9600
	DefaultWebPort  = "8080"
	DefaultCameraID = 0
)

// SerialPort returns the arm serial port from ARM_PORT env var.
// Falls back to the provided default if not set.
func SerialPort(defaultPort string) string {
	if port := os.Getenv("ARM_PORT"); port != "" {
		return port
	}
	return defaultPort
}

// SerialPortRequired returns the arm serial port from ARM_PORT env var.
// Exits if not set.
func SerialPortRequired() string {
	port := os.Getenv("ARM_PORT")
	if port == "" {
		fmt.Fprintln(os.Stderr, "Error: ARM_PORT environment variable is required")
		fmt.Fprintln(os.Stderr, "Usage: ARM_PORT=/dev/ttyACM0 go run ./cmd/...")
		os.Exit(1)
	}
	return port
}

// Baud returns the serial baud rate from ARM_BAUD env var or the
// firmware default.
func Baud() int {
	if v := os.Getenv("ARM_BAUD"); v != "" {
		if baud, err := strconv.Atoi(v); err == nil && baud > 0 {
			return baud
		}
	}
	return DefaultBaud
}

// WebPort returns the dashboard port from WEB_PORT env var or default.
func WebPort() string {
	if port := os.Getenv("WEB_PORT"); port != "" {
		return port
	}
	return DefaultWebPort
}

// CameraID returns the tracking camera index from CAMERA_ID env var
// or default.
func CameraID() int {
	if v := os.Getenv("CAMERA_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil && id >= 0 {
			return id
		}
	}
	return DefaultCameraID
}
