package attendance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// BridgeGateway talks to the on-premise device bridge over HTTP. The bridge
// fronts the vendor SDK and exposes the fleet as a small JSON API.
type BridgeGateway struct {
	baseURL    string
	httpClient *http.Client
}

// NewBridgeGateway constructs a gateway against the given bridge base URL.
func NewBridgeGateway(baseURL string) *BridgeGateway {
	return &BridgeGateway{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

var _ DeviceGateway = (*BridgeGateway)(nil)

// ListOfflineDevices returns devices the bridge reports as holding buffered
// records that have not been pushed yet.
func (g *BridgeGateway) ListOfflineDevices(ctx context.Context) ([]Device, error) {
	var devices []Device
	if err := g.getJSON(ctx, "/devices?state=offline", &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

type bridgeRecord struct {
	SubjectType string    `json:"subjectType"`
	SubjectID   int64     `json:"subjectId"`
	Direction   string    `json:"direction"`
	CapturedAt  time.Time `json:"capturedAt"`
}

// GetPendingRecords drains the buffered scans for one device. The bridge
// removes records from its buffer only after a subsequent acknowledgement,
// so a failed sync cycle re-reads the same batch.
func (g *BridgeGateway) GetPendingRecords(ctx context.Context, deviceID string) ([]DeviceRecord, error) {
	var raw []bridgeRecord
	path := fmt.Sprintf("/devices/%s/records", url.PathEscape(deviceID))
	if err := g.getJSON(ctx, path, &raw); err != nil {
		return nil, err
	}
	records := make([]DeviceRecord, 0, len(raw))
	for _, r := range raw {
		records = append(records, DeviceRecord{
			SubjectType: r.SubjectType,
			SubjectID:   r.SubjectID,
			DeviceID:    deviceID,
			Direction:   r.Direction,
			CapturedAt:  r.CapturedAt,
		})
	}
	return records, nil
}

func (g *BridgeGateway) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("device bridge returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
