//go:build integration

package integration_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/couchcryptid/tree-inventory-etl/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node KRaft broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("treemap-test"))
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start kafka container")

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// startPostgres runs a throwaway PostgreSQL server and returns its URL.
func startPostgres(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := testcontainers.Run(ctx, "postgres:16-alpine",
		testcontainers.WithExposedPorts("5432/tcp"),
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_USER":     "treemap",
			"POSTGRES_PASSWORD": "treemap",
			"POSTGRES_DB":       "treemap",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start postgres container")

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://treemap:treemap@%s:%s/treemap?sslmode=disable", host, port.Port())
}

func sampleRecords() []domain.TreeRecord {
	planted := time.Date(1985, 4, 12, 0, 0, 0, 0, time.UTC)
	height := 12
	circumference := 230
	return []domain.TreeRecord{
		{Identifier: 0, Height: &height, PlantingDate: &planted, Genus: "Cercis", Species: "siliquastrum",
			PlantingArea: "Alignement", Municipality: "Lyon 3", StreetName: "Cours Gambetta", Longitude: 4.835, Latitude: 45.758},
		{Identifier: 1, Circumference: &circumference, Genus: "Platanus", Species: "x hispanica",
			PlantingArea: "Alignement", Municipality: "Lyon 7", StreetName: "Avenue Jean Jaurès", Longitude: 4.84, Latitude: 45.74},
		{Identifier: 2, Genus: "Cercis", Species: "canadensis", Longitude: 4.85, Latitude: 45.76},
	}
}
