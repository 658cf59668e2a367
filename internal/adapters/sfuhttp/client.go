package sfuhttp

// Package sfuhttp adapts the SFU's JSON-over-HTTP control API to the
// ports.SFUClient interface. Every call is authenticated with a short-lived
// admin capability token minted from the shared API key pair.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/classline/live-api/internal/domain/room"
	apperrors "github.com/classline/live-api/internal/errors"
	"github.com/classline/live-api/internal/mediatoken"
	"github.com/classline/live-api/internal/ports"
)

const adminTokenTTL = time.Minute

// Ensure compile-time conformance to the port.
var _ ports.SFUClient = (*Client)(nil)

// ClientOptions groups dependencies for Client.
type ClientOptions struct {
	// Endpoint is the SFU control API base URL, e.g. "https://sfu.internal:7880".
	Endpoint string
	// APIKey and APISecret authenticate admin calls.
	APIKey    string
	APISecret string
	// HTTPClient overrides the default client; mainly for tests.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the SFU control plane.
type Client struct {
	endpoint  string
	apiKey    string
	apiSecret string
	http      *http.Client
	logger    *slog.Logger
}

// NewClient constructs a new Client.
func NewClient(opts ClientOptions) *Client {
	if opts.Endpoint == "" {
		panic("sfu endpoint is required")
	}
	if opts.APIKey == "" || opts.APISecret == "" {
		panic("sfu api key and secret are required")
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		endpoint:  strings.TrimRight(opts.Endpoint, "/"),
		apiKey:    opts.APIKey,
		apiSecret: opts.APISecret,
		http:      hc,
		logger:    logger,
	}
}

// Wire types for the control API.

type wireRoom struct {
	Name            string `json:"name"`
	Metadata        string `json:"metadata"`
	MaxParticipants uint32 `json:"max_participants"`
	NumParticipants uint32 `json:"num_participants"`
	EmptyTimeout    uint32 `json:"empty_timeout"`
	CreationTime    int64  `json:"creation_time"`
}

type wireParticipant struct {
	Identity   string          `json:"identity"`
	Metadata   string          `json:"metadata"`
	Permission *wirePermission `json:"permission"`
	JoinedAt   int64           `json:"joined_at"`
}

type wirePermission struct {
	CanPublish     bool `json:"can_publish"`
	CanSubscribe   bool `json:"can_subscribe"`
	CanPublishData bool `json:"can_publish_data"`
	CanUpdateOwn   bool `json:"can_update_metadata"`
}

func (w wireRoom) toDomain() (room.Room, error) {
	metadata := room.Metadata{}
	if w.Metadata != "" {
		decoded, err := room.DecodeMetadata(w.Metadata)
		if err != nil {
			return room.Room{}, fmt.Errorf("decode room metadata: %w", err)
		}
		metadata = decoded
	}
	return room.Room{
		Name:            w.Name,
		Metadata:        metadata,
		MaxParticipants: w.MaxParticipants,
		NumParticipants: w.NumParticipants,
		CreatedAt:       time.Unix(w.CreationTime, 0),
	}, nil
}

func (w wireParticipant) toDomain() room.Participant {
	p := room.Participant{
		Identity: w.Identity,
		Metadata: w.Metadata,
		JoinedAt: time.Unix(w.JoinedAt, 0),
	}
	if w.Permission != nil {
		p.Permissions = room.Permissions{
			CanPublish:        w.Permission.CanPublish,
			CanSubscribe:      w.Permission.CanSubscribe,
			CanPublishData:    w.Permission.CanPublishData,
			CanUpdateMetadata: w.Permission.CanUpdateOwn,
		}
	}
	return p
}

func (c *Client) CreateRoom(ctx context.Context, req ports.CreateRoomRequest) (room.Room, error) {
	encoded, err := req.Metadata.Encode()
	if err != nil {
		return room.Room{}, fmt.Errorf("encode room metadata: %w", err)
	}

	var out wireRoom
	err = c.do(ctx, "/v1/rooms/create", map[string]any{
		"name":             req.Name,
		"metadata":         encoded,
		"max_participants": req.Limits.MaxParticipants,
		"empty_timeout":    uint32(req.Limits.EmptyTimeout / time.Second),
	}, &out)
	if err != nil {
		return room.Room{}, err
	}
	return out.toDomain()
}

func (c *Client) DeleteRoom(ctx context.Context, roomName string) error {
	return c.do(ctx, "/v1/rooms/delete", map[string]any{"room": roomName}, nil)
}

func (c *Client) GetRoom(ctx context.Context, roomName string) (room.Room, error) {
	var out wireRoom
	if err := c.do(ctx, "/v1/rooms/get", map[string]any{"room": roomName}, &out); err != nil {
		return room.Room{}, err
	}
	return out.toDomain()
}

func (c *Client) ListRooms(ctx context.Context) ([]room.Room, error) {
	var out struct {
		Rooms []wireRoom `json:"rooms"`
	}
	if err := c.do(ctx, "/v1/rooms/list", map[string]any{}, &out); err != nil {
		return nil, err
	}

	rooms := make([]room.Room, 0, len(out.Rooms))
	for _, w := range out.Rooms {
		rm, err := w.toDomain()
		if err != nil {
			// A room with foreign metadata is not ours to interpret.
			c.logger.Warn("skipping room with undecodable metadata", "room", w.Name, "error", err)
			continue
		}
		rooms = append(rooms, rm)
	}
	return rooms, nil
}

func (c *Client) GetParticipant(ctx context.Context, roomName, identity string) (room.Participant, error) {
	var out wireParticipant
	err := c.do(ctx, "/v1/participants/get", map[string]any{
		"room":     roomName,
		"identity": identity,
	}, &out)
	if err != nil {
		return room.Participant{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) UpdateParticipantMetadata(ctx context.Context, roomName, identity, metadata string) error {
	return c.do(ctx, "/v1/participants/update_metadata", map[string]any{
		"room":     roomName,
		"identity": identity,
		"metadata": metadata,
	}, nil)
}

func (c *Client) UpdateParticipantPermissions(
	ctx context.Context,
	roomName, identity string,
	perms room.Permissions,
) error {
	return c.do(ctx, "/v1/participants/update_permissions", map[string]any{
		"room":     roomName,
		"identity": identity,
		"permission": wirePermission{
			CanPublish:     perms.CanPublish,
			CanSubscribe:   perms.CanSubscribe,
			CanPublishData: perms.CanPublishData,
			CanUpdateOwn:   perms.CanUpdateMetadata,
		},
	}, nil)
}

// do posts the request body to path and decodes the response into out when
// out is non-nil. SFU status codes map onto the broker's error taxonomy.
func (c *Client) do(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	token, err := c.adminToken()
	if err != nil {
		return fmt.Errorf("mint admin token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeUpstream, "sfu request %s failed", path)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("close response body", "error", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return c.statusError(path, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeUpstream, "decode sfu response from %s", path)
	}
	return nil
}

func (c *Client) adminToken() (string, error) {
	return mediatoken.New(c.apiKey, c.apiSecret).
		SetIdentity("live-api-admin").
		SetTTL(adminTokenTTL).
		SetGrants(mediatoken.Grants{RoomAdmin: true, RoomList: true}).
		SignedString()
}

func (c *Client) statusError(path string, resp *http.Response) error {
	msg := readErrorBody(resp.Body)
	switch resp.StatusCode {
	case http.StatusNotFound:
		if msg == "" {
			msg = "resource not found"
		}
		return apperrors.NotFound(msg)
	case http.StatusConflict:
		if msg == "" {
			msg = "resource conflict"
		}
		return apperrors.Conflict(msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.Upstreamf("sfu rejected credentials for %s (status %d)", path, resp.StatusCode)
	default:
		return apperrors.Upstreamf("sfu request %s failed with status %d: %s", path, resp.StatusCode, msg)
	}
}

func readErrorBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
