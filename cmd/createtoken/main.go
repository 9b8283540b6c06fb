// Command createtoken issues a development identity token for calling the
// protected API by hand.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"trackai.dev/trackai/security"
)

func main() {
	id := flag.Int("id", 1, "user id")
	username := flag.String("username", "engineer", "username claim")
	email := flag.String("email", "engineer@dpwh.gov.ph", "email claim")
	ttl := flag.Int64("ttl", 8*3600, "lifetime in seconds")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	token, err := security.CreateIdentityToken(&security.TrackAIIdentity{
		Id:       *id,
		UserName: *username,
		Email:    *email,
		Provider: "local",
	}, secret, *ttl)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}
