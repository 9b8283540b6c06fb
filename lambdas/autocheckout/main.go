package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	appcore "trackai.dev/trackai/core"
	"trackai.dev/trackai/infrastructure/communication"
	"trackai.dev/trackai/infrastructure/devops"
	trackai "trackai.dev/trackai/trackai/core"
	"trackai.dev/trackai/trackai/store/mysql"
)

// SweepEvent is the scheduler payload. An empty cutoff means the default
// end-of-day cutoff.
type SweepEvent struct {
	Cutoff string `json:"cutoff"`
	DryRun bool   `json:"dryRun"`
}

func HandleRequest(ctx context.Context, event SweepEvent) (trackai.SweepResult, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return trackai.SweepResult{}, err
	}
	defer logger.Sync()

	cfg, err := devops.LoadAppConfig(ctx)
	if err != nil {
		return trackai.SweepResult{}, fmt.Errorf("load config: %w", err)
	}

	dm, err := appcore.New(cfg.DSN, 2)
	if err != nil {
		return trackai.SweepResult{}, fmt.Errorf("connect database: %w", err)
	}
	defer dm.Close()

	sessions := trackai.NewSessionEngine(mysql.NewSessionStore(dm.DB))
	sweeper := trackai.NewAutoCheckoutSweeper(sessions, logger)

	slack := communication.ConnectSlack()

	result, err := sweeper.Run(ctx, event.Cutoff, event.DryRun)
	if err != nil {
		if slackErr := slack.Error(fmt.Sprintf("Auto-checkout sweep failed: %v", err)); slackErr != nil {
			fmt.Printf("[ERROR] failed to notify slack: %v\n", slackErr)
		}
		return trackai.SweepResult{}, err
	}

	if err := slack.SweepReport(result); err != nil {
		fmt.Printf("[ERROR] failed to post sweep report: %v\n", err)
	}
	return result, nil
}

func main() {
	lambda.Start(HandleRequest)
}
