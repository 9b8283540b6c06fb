// Command autocheckout runs the end-of-day sweep from a cron or by hand.
// Use -dry-run to see what would be closed without mutating anything.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"go.uber.org/zap"

	appcore "trackai.dev/trackai/core"
	"trackai.dev/trackai/infrastructure/communication"
	"trackai.dev/trackai/infrastructure/devops"
	trackai "trackai.dev/trackai/trackai/core"
	"trackai.dev/trackai/trackai/store/mysql"
)

func main() {
	cutoff := flag.String("cutoff", trackai.DefaultSweepCutoff, "end-of-day cutoff, HH:MM local time")
	dryRun := flag.Bool("dry-run", false, "report without closing sessions")
	notify := flag.Bool("slack", false, "post the report to Slack")
	flag.Parse()

	ctx := context.Background()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	cfg, err := devops.LoadAppConfig(ctx)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	dm, err := appcore.New(cfg.DSN, 2)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer dm.Close()

	sessions := trackai.NewSessionEngine(mysql.NewSessionStore(dm.DB))
	sweeper := trackai.NewAutoCheckoutSweeper(sessions, logger)

	result, err := sweeper.Run(ctx, *cutoff, *dryRun)
	if err != nil {
		log.Fatalf("sweep: %v", err)
	}

	fmt.Print(communication.FormatSweepReport(result))

	if *notify {
		if err := communication.ConnectSlack().SweepReport(result); err != nil {
			log.Fatalf("post to slack: %v", err)
		}
	}
}
