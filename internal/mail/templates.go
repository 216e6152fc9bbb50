package mail

import (
	"bytes"
	"html/template"
	"time"
)

var (
	otpTmpl = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html><body style="font-family:sans-serif">
<p>Hello {{.Name}},</p>
<p>{{.Intro}}</p>
<p style="font-size:24px;letter-spacing:4px"><b>{{.Code}}</b></p>
<p>The code expires in {{.TTL}}.</p>
</body></html>`))

	offlineTicketTmpl = template.Must(template.New("offline").Parse(`<!DOCTYPE html>
<html><body style="font-family:sans-serif">
<p>Hello {{.Name}},</p>
<p>Here is your e-ticket for <b>{{.EventName}}</b>.</p>
<table>
<tr><td>Date</td><td>{{.Date}}</td></tr>
<tr><td>Location</td><td>{{.Location}}</td></tr>
<tr><td>Quantity</td><td>{{.Quantity}}</td></tr>
<tr><td>Ticket</td><td>{{.TicketID}}</td></tr>
</table>
<p>Show the attached QR code at the entrance. It can be scanned once and is valid until {{.ValidUntil}}.</p>
</body></html>`))

	onlineTicketTmpl = template.Must(template.New("online").Parse(`<!DOCTYPE html>
<html><body style="font-family:sans-serif">
<p>Hello {{.Name}},</p>
<p>Your ticket for <b>{{.EventName}}</b> on {{.Date}} is confirmed.</p>
<p>Join here: <a href="{{.Link}}">{{.Link}}</a></p>
<p>Ticket: {{.TicketID}}</p>
</body></html>`))
)

const dateLayout = "Mon, 02 Jan 2006 15:04 MST"

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}

func VerifyOTP(to, name, code string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Subject: "Verify your account",
		HTML: render(otpTmpl, map[string]any{
			"Name": name, "Intro": "Use this code to verify your account.", "Code": code, "TTL": ttl.String(),
		}),
		Text: "Your verification code: " + code,
	}
}

func ResetOTP(to, name, code string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Subject: "Reset your password",
		HTML: render(otpTmpl, map[string]any{
			"Name": name, "Intro": "Use this code to reset your password.", "Code": code, "TTL": ttl.String(),
		}),
		Text: "Your password reset code: " + code,
	}
}

type TicketDetails struct {
	Name      string
	TicketID  string
	EventName string
	Date      time.Time
	Location  string
	Quantity  int
}

func OfflineTicket(to string, d TicketDetails, qrPNG []byte, validUntil time.Time) Message {
	return Message{
		To:      to,
		Subject: "Your e-ticket for " + d.EventName,
		HTML: render(offlineTicketTmpl, map[string]any{
			"Name": d.Name, "EventName": d.EventName, "Date": d.Date.Format(dateLayout),
			"Location": d.Location, "Quantity": d.Quantity, "TicketID": d.TicketID,
			"ValidUntil": validUntil.Format(dateLayout),
		}),
		Attachments: []Attachment{{Name: "ticket-" + d.TicketID + ".png", Data: qrPNG}},
	}
}

func OnlineTicket(to string, d TicketDetails, link string) Message {
	return Message{
		To:      to,
		Subject: "Your ticket for " + d.EventName,
		HTML: render(onlineTicketTmpl, map[string]any{
			"Name": d.Name, "EventName": d.EventName, "Date": d.Date.Format(dateLayout),
			"Link": link, "TicketID": d.TicketID,
		}),
	}
}
