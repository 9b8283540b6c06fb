// Command sarasping is a smoke test for the Saras integration: it fetches a
// token (service-account mode), the user details and the first page of
// projects, and prints what came back.
package main

import (
	"context"
	"fmt"
	"log"

	"go.uber.org/zap"

	saras "trackai.dev/trackai/saras/v1"
)

func main() {
	ctx := context.Background()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	cfg := saras.ConfigFromEnv()
	fmt.Printf("mode: %s, base url: %s\n", cfg.Mode, cfg.BaseURL)

	tokens := saras.NewCachedTokenManager(cfg, saras.NewMemoryCache(), logger)
	client := saras.NewClient(cfg, tokens, logger)

	user, err := client.GetUserDetails(ctx)
	if err != nil {
		log.Fatalf("get user details: %v", err)
	}
	fmt.Printf("user: %s <%s> (%s)\n", user.Name, user.Email, user.Role)

	projects, err := client.GetProjectsForUser(ctx, 1, 10)
	if err != nil {
		log.Fatalf("get projects: %v", err)
	}
	fmt.Printf("projects: %d of %d\n", len(projects.Projects), projects.TotalCount)
	for _, project := range projects.Projects {
		fmt.Printf("  %s  %s  (%s)\n", project.ExternalID, project.Name, project.Status)
	}
}
