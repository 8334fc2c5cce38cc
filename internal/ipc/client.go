package ipc

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"resty.dev/v3"
)

func newClient(path string) *resty.Client {
	client := resty.NewWithClient(&http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", path)
			},
		},
	})

	client.SetBaseURL("http://camview")
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")
	client.SetHeader("User-Agent", "camview")
	return client
}

func post(cmd CommandType, body any) (*Response, error) {
	client := newClient(SocketPath())
	defer client.Close()

	result := Response{}
	request := client.R().SetResult(&result)
	if body != nil {
		request.SetBody(body)
	}

	response, err := request.Post(route(cmd))
	if err != nil {
		return nil, err
	}
	if response.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("error sending %s: %s", cmd, response.Status())
	}
	return &result, nil
}

// SendStatus asks a running daemon for its status. An error usually means no
// daemon is listening.
func SendStatus() (*StatusResponse, error) {
	client := newClient(SocketPath())
	defer client.Close()

	result := StatusResponse{}
	response, err := client.R().SetResult(&result).Get(route(CommandStatus))
	if err != nil {
		return nil, err
	}
	if response.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("error getting status: %s", response.Status())
	}
	return &result, nil
}

func SendStop() error {
	_, err := post(CommandStop, nil)
	return err
}

func SendNext() error {
	_, err := post(CommandNext, nil)
	return err
}

func SendRotate(degrees int) error {
	_, err := post(CommandRotate, RotateRequest{Degrees: degrees})
	return err
}

func SendSource(name string) error {
	_, err := post(CommandSource, SourceRequest{Source: name})
	return err
}

// ParseDegrees accepts an integer angle, optionally suffixed with "deg".
func ParseDegrees(s string) (int, error) {
	if n := len(s); n > 3 && s[n-3:] == "deg" {
		s = s[:n-3]
	}
	degrees, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid angle %q", s)
	}
	return degrees, nil
}
