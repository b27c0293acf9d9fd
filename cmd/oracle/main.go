package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"backend/internal/bridge"
	"backend/internal/config"
	"backend/internal/events"
	"backend/internal/ledger"
	"backend/internal/logger"
	"backend/internal/lottery"
	"backend/internal/operator"
	"backend/internal/oracle"
	"backend/internal/random"
	"backend/internal/relay"
	"backend/internal/roles"
	"backend/internal/storage"
	"backend/internal/types"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	configuration := config.Load()
	logger.Initialize(logger.Configuration{
		LogFile:   configuration.LogFile,
		ErrorFile: configuration.ErrorFile,
		Level:     configuration.LogLevel,
		Console:   configuration.LogConsole,
	})
	defer logger.Sync()

	errCh := make(chan error, 1)

	go func() {
		storageInstance := storage.NewSqliteStorage(configuration.DatabasePath)
		journal := events.NewJournal()
		roleSet := roles.NewSet(types.Address(configuration.Owner))

		ledgerInstance := ledger.New(ledger.Config{
			FeePercent: configuration.FeePercent,
			Treasury:   types.Address(configuration.Treasury),
			RewardPool: types.Address(configuration.RewardPool),
		},
			selectFeed(configuration.AssetFeedURL, configuration.AssetFeedAnswer),
			selectFeed(configuration.BaseFeedURL, configuration.BaseFeedAnswer),
			roleSet,
			journal,
		)

		beacon := random.NewLocalBeacon("beacon")
		lotteryInstance := lottery.New(lottery.Config{
			Account:         types.Address(configuration.LotteryAccount),
			ServiceIdentity: "beacon",
			Cooldown:        configuration.DrawCooldown,
			Params:          random.RequestParams{WordCount: 1},
		}, ledgerInstance, beacon, roleSet, journal)
		beacon.Attach(lotteryInstance)

		relayInstance := relay.NewLoopback("relay")
		bridgeInstance := bridge.New(bridge.Config{
			Account:          types.Address(configuration.BridgeAccount),
			TokenAddress:     types.Address(configuration.TokenAddress),
			FeeToken:         types.Address(configuration.FeeTokenAddress),
			LocalChain:       types.ChainID(configuration.LocalChain),
			DestinationChain: types.ChainID(configuration.DestinationChain),
			RelayIdentity:    relayInstance.Identity(),
		}, ledgerInstance, relayInstance, roleSet, journal)
		relayInstance.Connect(types.ChainID(configuration.LocalChain), bridgeInstance)

		operatorInstance := operator.NewOperator(
			ctx,
			storageInstance,
			ledgerInstance,
			lotteryInstance,
			bridgeInstance,
			roleSet,
			journal,
			types.Address(configuration.Owner),
		)

		if err := operatorInstance.Restore(); err != nil {
			errCh <- err
			return
		}

		go serveMetrics(configuration.MetricsAddr)

		ticker := time.NewTicker(configuration.CycleInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				beacon.Wait()
				operatorInstance.Finalize()
				return
			case <-ticker.C:
				operatorInstance.Run()
			}
		}
	}()

	select {
	case err := <-errCh:
		fmt.Printf("stopping due to error: %v\n", err)
		cancel()
	case <-waitForInterrupt():
		fmt.Println("interrupt signal received")
		cancel()
	}
}

func selectFeed(url string, staticAnswer string) oracle.PriceFeed {
	if url != "" {
		return oracle.NewHTTPFeed(url)
	}
	return oracle.NewStaticFeed(types.StringToBigInt(staticAnswer))
}

func serveMetrics(addr string) {
	http.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Error("metrics listener stopped: " + err.Error())
	}
}

func waitForInterrupt() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	return sigCh
}
