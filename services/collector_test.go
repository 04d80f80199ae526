package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse/config"
	"pulse/models"
)

func testCollector(t *testing.T, seeds ...string) *Collector {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.SeedNodes = seeds
	return NewCollector(cfg, NewDisabledMongoDBService(), nil)
}

func TestDiscoverAddsNewNodeOnce(t *testing.T) {
	c := testCollector(t)
	now := time.Now()

	pod := models.PodEntry{
		Address:  "203.0.113.5:9001",
		Pubkey:   "pk1",
		RPCPort:  6000,
		Version:  "0.8.0",
		LastSeen: now.Unix(),
	}

	c.discover(pod, now)
	c.discover(pod, now.Add(time.Minute))

	nodes := c.GetNodes()
	require.Len(t, nodes, 1)

	// The RPC port replaces the gossip port in the registered address.
	assert.Equal(t, "203.0.113.5:6000", nodes[0].ID)
	assert.Equal(t, "203.0.113.5:6000", nodes[0].Address)
	assert.Equal(t, "pk1", nodes[0].Pubkey)
	assert.Equal(t, "0.8.0", nodes[0].Version)
	// A re-gossiped node keeps its original FirstSeen.
	assert.Equal(t, now, nodes[0].FirstSeen)
}

func TestDiscoverIgnoresEmptyAddress(t *testing.T) {
	c := testCollector(t)
	c.discover(models.PodEntry{Address: ""}, time.Now())
	assert.Empty(t, c.GetNodes())
}

func TestDiscoverDoesNotBlockReads(t *testing.T) {
	c := testCollector(t, "198.51.100.1:6000")
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.discover(models.PodEntry{
				Address: fmt.Sprintf("198.51.100.%d:9001", i+2),
				RPCPort: 6000,
			}, now)
		}(i)

		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.GetNodes()
			_, _ = c.GetNode("198.51.100.1:6000")
		}()
	}
	wg.Wait()

	// One seed plus twenty distinct discoveries, no duplicates.
	assert.Len(t, c.GetNodes(), 21)
}
