package transport

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// NewQueueName returns a unique queue name of the form <prefix>-<hostname>-<random hex>
func NewQueueName(prefix string) (string, error) {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "localhost"
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate queue id: %w", err)
	}

	return fmt.Sprintf("%s-%s-%s", prefix, hostname, strings.ReplaceAll(id.String(), "-", "")), nil
}
