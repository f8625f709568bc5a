package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"github.com/Tyrowin/roomchat/internal/protocol"
)

var errUsage = errors.New("usage: /location <latitude> <longitude>")

// inbound is any frame pushed by the server, acks included.
type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Ack   int             `json:"ack"`
	Error string          `json:"error"`
}

// parseLine turns one line of user input into an outbound event.
func parseLine(line string) (string, any, error) {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "/location" {
		return protocol.EventSendMessage, line, nil
	}

	if len(fields) != 3 {
		return "", nil, errUsage
	}
	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	lng, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	return protocol.EventLocationMessage, protocol.Coordinates{Latitude: &lat, Longitude: &lng}, nil
}

type printer struct {
	out     io.Writer
	colours bool
}

func (p printer) paint(style color.Style, s string) string {
	if !p.colours {
		return s
	}
	return style.Render(s)
}

func stamp(ms int64) string {
	return time.UnixMilli(ms).Format("15:04")
}

// render prints one server frame. Acks are handled by the caller.
func (p printer) render(frame inbound) error {
	switch frame.Event {
	case protocol.EventMessage:
		var m protocol.MessagePayload
		if err := json.Unmarshal(frame.Data, &m); err != nil {
			return err
		}
		style := color.New(color.FgCyan, color.OpBold)
		if m.Username == protocol.AdminName {
			style = color.New(color.FgYellow)
		}
		_, err := fmt.Fprintf(p.out, "%s %s: %s\n", stamp(m.CreatedAt), p.paint(style, m.Username), m.Text)
		return err

	case protocol.EventLocationMessage:
		var m protocol.LocationPayload
		if err := json.Unmarshal(frame.Data, &m); err != nil {
			return err
		}
		_, err := fmt.Fprintf(p.out, "%s %s: %s\n", stamp(m.CreatedAt),
			p.paint(color.New(color.FgCyan, color.OpBold), m.Username),
			p.paint(color.New(color.FgBlue, color.OpUnderscore), m.Location))
		return err

	case protocol.EventRoomData:
		var d protocol.RoomDataPayload
		if err := json.Unmarshal(frame.Data, &d); err != nil {
			return err
		}
		p.roster(d)
		return nil

	default:
		_, err := fmt.Fprintf(p.out, "%s %s\n", p.paint(color.New(color.FgGray), "unhandled event"), frame.Event)
		return err
	}
}

func (p printer) roster(d protocol.RoomDataPayload) {
	table := tablewriter.NewWriter(p.out)
	table.SetHeader([]string{"#", "Room " + d.Room})
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for i, u := range d.Users {
		table.Append([]string{strconv.Itoa(i + 1), u.Username})
	}
	table.Render()
}

func (p printer) failure(what string, reason string) {
	_, _ = fmt.Fprintf(p.out, "%s %s\n", p.paint(color.New(color.BgRed, color.FgWhite), what), reason)
}
