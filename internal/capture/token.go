package capture

import (
	"fmt"
	"time"

	"github.com/livekit/protocol/auth"

	"github.com/raheva/mirror/internal/config"
)

const tokenTTL = 6 * time.Hour

// RoomToken mints a participant access token for the live room. The mirror
// frontend and the dialogue runtime both join with these.
func RoomToken(lk config.LiveKitConfig, identity, name string) (string, error) {
	if identity == "" {
		return "", fmt.Errorf("capture: token identity is required")
	}
	at := auth.NewAccessToken(lk.APIKey, lk.APISecret)
	at.SetVideoGrant(&auth.VideoGrant{
		RoomJoin: true,
		Room:     lk.Room,
	})
	at.SetIdentity(identity)
	at.SetName(name)
	at.SetValidFor(tokenTTL)

	jwt, err := at.ToJWT()
	if err != nil {
		return "", fmt.Errorf("capture: signing room token: %w", err)
	}
	return jwt, nil
}
