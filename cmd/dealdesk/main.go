// Command dealdesk is a terminal client for the DealDesk scheduling API.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/fatih/color"

	"github.com/dealdesk/dealdesk/pkg/agenda"
	"github.com/dealdesk/dealdesk/pkg/grid"
)

var (
	serverURL = flag.String("server", "http://localhost:8080", "DealDesk server URL (or set DEALDESK_SERVER)")
	timezone  = flag.String("tz", "UTC", "Timezone for display (IANA name from the curated list)")
	roleFlag  = flag.String("role", "user", "Role sent to the server (admin, manager, user)")
	userFlag  = flag.String("user", "", "User id sent to the server (or set DEALDESK_USER)")
	version   = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("DealDesk CLI v1.2.0")
		return
	}

	if *serverURL == "http://localhost:8080" {
		if env := os.Getenv("DEALDESK_SERVER"); env != "" {
			*serverURL = env
		}
	}
	if *userFlag == "" {
		*userFlag = os.Getenv("DEALDESK_USER")
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	var err error
	switch args[0] {
	case "agenda":
		day := time.Now().Format("2006-01-02")
		if len(args) > 1 {
			day = args[1]
		}
		err = runAgenda(day)
	case "show":
		if len(args) != 2 {
			usage()
			os.Exit(1)
		}
		err = runShow(args[1])
	case "access":
		if len(args) != 2 {
			usage()
			os.Exit(1)
		}
		err = runAccess(args[1])
	case "zones":
		err = runZones()
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s [flags] <command>

Commands:
  agenda [date]   Show the day's meetings (date as 2006-01-02, default today)
  show <id>       Show one meeting in detail
  access <route>  Check whether the current role may view a page route
  zones           List the selectable timezones

Flags:
`, os.Args[0])
	flag.PrintDefaults()
}

func get(path string, query url.Values, out any) error {
	u := *serverURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Role", *roleFlag)
	if *userFlag != "" {
		req.Header.Set("X-User", *userFlag)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// meetingJSON mirrors the server's meeting response.
type meetingJSON struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"`
	Description *string   `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	JoinURL     *string   `json:"join_url"`
	LeadID      *string   `json:"lead_id"`
	ContactID   *string   `json:"contact_id"`
	Status      string    `json:"status"`
	Completed   bool      `json:"completed"`
}

func runAgenda(day string) error {
	var resp struct {
		Meetings []meetingJSON `json:"meetings"`
	}
	q := url.Values{"day": {day}, "tz": {*timezone}}
	if err := get("/api/v1/meetings", q, &resp); err != nil {
		return err
	}

	date, err := time.Parse("2006-01-02", day)
	if err != nil {
		return fmt.Errorf("invalid date %q", day)
	}

	items := make([]agenda.Item, len(resp.Meetings))
	for i, m := range resp.Meetings {
		join := ""
		if m.JoinURL != nil {
			join = *m.JoinURL
		}
		items[i] = agenda.Item{
			Subject:   m.Subject,
			StartTime: m.StartTime,
			EndTime:   m.EndTime,
			JoinURL:   join,
			Status:    grid.Status(m.Status),
		}
	}
	return agenda.Render(os.Stdout, items, date, time.Now(), *timezone)
}

func runShow(id string) error {
	var m meetingJSON
	if err := get("/api/v1/meetings/"+id, url.Values{"tz": {*timezone}}, &m); err != nil {
		return err
	}

	bold := color.New(color.Bold)
	bold.Println(m.Subject)
	fmt.Printf("  When:   %s - %s (%s)\n",
		localFormat(m.StartTime), localFormat(m.EndTime), *timezone)
	fmt.Printf("  Status: %s\n", displayStatus(m))
	if m.JoinURL != nil && *m.JoinURL != "" {
		fmt.Printf("  Join:   %s\n", *m.JoinURL)
	}
	if m.LeadID != nil {
		fmt.Printf("  Lead:   %s\n", *m.LeadID)
	}
	if m.ContactID != nil {
		fmt.Printf("  Contact: %s\n", *m.ContactID)
	}
	if m.Description != nil && *m.Description != "" {
		// Rich-text descriptions come back as HTML fragments; render them
		// as terminal-friendly markdown.
		text, err := md.ConvertString(*m.Description)
		if err != nil {
			text = *m.Description
		}
		fmt.Printf("\n%s\n", text)
	}
	return nil
}

func localFormat(t time.Time) string {
	loc, err := time.LoadLocation(*timezone)
	if err != nil {
		return t.Format("2006-01-02 15:04")
	}
	return t.In(loc).Format("2006-01-02 15:04")
}

func displayStatus(m meetingJSON) string {
	switch {
	case m.Status == "cancelled":
		return color.RedString("cancelled")
	case m.Completed:
		return color.HiBlackString("completed")
	default:
		return color.GreenString("scheduled")
	}
}

func runAccess(route string) error {
	var resp struct {
		Route   string `json:"route"`
		Allowed bool   `json:"allowed"`
	}
	if err := get("/api/v1/access", url.Values{"route": {route}}, &resp); err != nil {
		return err
	}
	if resp.Allowed {
		fmt.Printf("%s: %s for role %s\n", resp.Route, color.GreenString("allowed"), *roleFlag)
	} else {
		fmt.Printf("%s: %s for role %s\n", resp.Route, color.RedString("denied"), *roleFlag)
	}
	return nil
}

func runZones() error {
	var resp struct {
		Zones []struct {
			Name  string `json:"name"`
			Label string `json:"label"`
		} `json:"zones"`
	}
	if err := get("/api/v1/zones", nil, &resp); err != nil {
		return err
	}
	for _, z := range resp.Zones {
		fmt.Printf("%-32s %s\n", z.Name, z.Label)
	}
	return nil
}
