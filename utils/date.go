package utils

import "time"

// ManilaTZ is the deployment timezone; field devices report local time.
var ManilaTZ = time.FixedZone("UTC+8", 8*60*60)

func ManilaNow() time.Time {
	return time.Now().In(ManilaTZ)
}
