// coachctl is a coach-facing front end for the coachlog API. It drives the
// same endpoints the web dashboard uses, through the shared API client.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/coachlog/api/internal/client"
	"github.com/coachlog/api/internal/model"
)

// Times are entered the way the dashboard's datetime-local inputs render them.
const timeLayout = "2006-01-02T15:04"

func main() {
	server := flag.String("server", envOr("COACHLOG_SERVER", "http://localhost:4000"), "API server base URL")
	token := flag.String("token", os.Getenv("COACHLOG_TOKEN"), "Access token (or COACHLOG_TOKEN)")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}

	api := client.New(*server)
	if *token != "" {
		api.SetToken(*token)
	}

	ctx := context.Background()

	var err error
	switch args[0] {
	case "register", "login":
		err = runAuth(ctx, api, args[0], args[1:])
	case "sessions":
		err = runSessions(ctx, api, args[1:])
	case "slots":
		err = runSlots(ctx, api, args[1:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("coachctl: %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage:
  coachctl [flags] register|login -username U -password P
  coachctl [flags] sessions list|create|update|delete [flags]
  coachctl [flags] slots list|mine|create|update|delete [flags]`)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func runAuth(ctx context.Context, api *client.Client, action string, args []string) error {
	fs := flag.NewFlagSet(action, flag.ExitOnError)
	username := fs.String("username", "", "Coach username")
	password := fs.String("password", "", "Coach password")
	fs.Parse(args)

	var (
		resp *client.AuthResponse
		err  error
	)
	if action == "register" {
		resp, err = api.Register(ctx, *username, *password)
	} else {
		resp, err = api.Login(ctx, *username, *password)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Signed in as %s (id=%d)\n", resp.User.Username, resp.User.ID)
	fmt.Printf("export COACHLOG_TOKEN=%s\n", resp.AccessToken)
	return nil
}

func runSessions(ctx context.Context, api *client.Client, args []string) error {
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "list":
		sessions, err := api.Sessions(ctx)
		if err != nil {
			return err
		}
		for _, s := range sessions {
			printSessionCard(s)
		}
		return nil

	case "create":
		fs := flag.NewFlagSet("sessions create", flag.ExitOnError)
		// Defaults match the dashboard's create form.
		number := fs.Int("number", 1, "Session number")
		date := fs.String("date", time.Now().Format("2006-01-02"), "Session date (YYYY-MM-DD)")
		attendance := fs.String("attendance", "", "Comma-separated attendee names")
		topics := fs.String("topics", "", "Topics covered")
		homework := fs.String("homework", "", "Homework assigned")
		analysis := fs.String("analysis", "", "Game analysis notes")
		slotID := fs.Int64("slot", 0, "Associated time slot id (optional)")
		fs.Parse(args[1:])

		in := client.SessionInput{
			SessionNumber: *number,
			SessionDate:   model.Date(*date),
			Attendance:    *attendance,
			Topics:        *topics,
			Homework:      *homework,
			GameAnalysis:  *analysis,
		}
		if *slotID != 0 {
			in.TimeSlotID = slotID
		}

		session, err := api.CreateSession(ctx, in)
		if err != nil {
			return err
		}
		printSessionCard(*session)
		return nil

	case "update":
		fs := flag.NewFlagSet("sessions update", flag.ExitOnError)
		id := fs.Int64("id", 0, "Session id")
		number := fs.Int("number", 0, "Session number")
		date := fs.String("date", "", "Session date (YYYY-MM-DD)")
		attendance := fs.String("attendance", "", "Comma-separated attendee names")
		topics := fs.String("topics", "", "Topics covered")
		homework := fs.String("homework", "", "Homework assigned")
		analysis := fs.String("analysis", "", "Game analysis notes")
		fs.Parse(args[1:])

		// Only flags the coach actually set go into the partial payload;
		// everything else keeps its stored value.
		var in client.SessionUpdate
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "number":
				in.SessionNumber = number
			case "date":
				d := model.Date(*date)
				in.SessionDate = &d
			case "attendance":
				in.Attendance = attendance
			case "topics":
				in.Topics = topics
			case "homework":
				in.Homework = homework
			case "analysis":
				in.GameAnalysis = analysis
			}
		})

		session, err := api.UpdateSession(ctx, *id, in)
		if err != nil {
			return err
		}
		printSessionCard(*session)
		return nil

	case "delete":
		fs := flag.NewFlagSet("sessions delete", flag.ExitOnError)
		id := fs.Int64("id", 0, "Session id")
		yes := fs.Bool("yes", false, "Confirm deletion")
		fs.Parse(args[1:])

		if !confirm(*yes, fmt.Sprintf("Delete session %d?", *id)) {
			fmt.Println("Aborted")
			return nil
		}
		if err := api.DeleteSession(ctx, *id); err != nil {
			return err
		}
		fmt.Printf("Session %d deleted\n", *id)
		return nil
	}

	usage()
	os.Exit(2)
	return nil
}

func runSlots(ctx context.Context, api *client.Client, args []string) error {
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "list":
		slots, err := api.AvailableTimeSlots(ctx)
		if err != nil {
			return err
		}
		for _, s := range slots {
			printSlotCard(s)
		}
		return nil

	case "mine":
		slots, err := api.CoachTimeSlots(ctx)
		if err != nil {
			return err
		}
		for _, s := range slots {
			printSlotCard(s)
		}
		return nil

	case "create":
		now := time.Now()
		fs := flag.NewFlagSet("slots create", flag.ExitOnError)
		start := fs.String("start", now.Format(timeLayout), "Start time")
		end := fs.String("end", now.Add(time.Hour).Format(timeLayout), "End time")
		day := fs.Int("day", int(now.Weekday()), "Day of week (0=Sunday)")
		recurring := fs.Bool("recurring", true, "Slot recurs weekly")
		fs.Parse(args[1:])

		startTime, err := time.ParseInLocation(timeLayout, *start, time.Local)
		if err != nil {
			return fmt.Errorf("invalid -start: %w", err)
		}
		endTime, err := time.ParseInLocation(timeLayout, *end, time.Local)
		if err != nil {
			return fmt.Errorf("invalid -end: %w", err)
		}

		slot, err := api.CreateTimeSlot(ctx, client.TimeSlotInput{
			StartTime:   startTime,
			EndTime:     endTime,
			DayOfWeek:   *day,
			IsRecurring: recurring,
		})
		if err != nil {
			return err
		}
		printSlotCard(*slot)
		return nil

	case "update":
		fs := flag.NewFlagSet("slots update", flag.ExitOnError)
		id := fs.Int64("id", 0, "Time slot id")
		start := fs.String("start", "", "Start time")
		end := fs.String("end", "", "End time")
		day := fs.Int("day", 0, "Day of week (0=Sunday)")
		recurring := fs.Bool("recurring", true, "Slot recurs weekly")
		booked := fs.Bool("booked", false, "Slot is booked")
		fs.Parse(args[1:])

		var in client.TimeSlotUpdate
		var parseErr error
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "start":
				t, err := time.ParseInLocation(timeLayout, *start, time.Local)
				if err != nil {
					parseErr = fmt.Errorf("invalid -start: %w", err)
					return
				}
				in.StartTime = &t
			case "end":
				t, err := time.ParseInLocation(timeLayout, *end, time.Local)
				if err != nil {
					parseErr = fmt.Errorf("invalid -end: %w", err)
					return
				}
				in.EndTime = &t
			case "day":
				in.DayOfWeek = day
			case "recurring":
				in.IsRecurring = recurring
			case "booked":
				in.IsBooked = booked
			}
		})
		if parseErr != nil {
			return parseErr
		}

		slot, err := api.UpdateTimeSlot(ctx, *id, in)
		if err != nil {
			return err
		}
		printSlotCard(*slot)
		return nil

	case "delete":
		fs := flag.NewFlagSet("slots delete", flag.ExitOnError)
		id := fs.Int64("id", 0, "Time slot id")
		yes := fs.Bool("yes", false, "Confirm deletion")
		fs.Parse(args[1:])

		if !confirm(*yes, fmt.Sprintf("Delete time slot %d?", *id)) {
			fmt.Println("Aborted")
			return nil
		}
		if err := api.DeleteTimeSlot(ctx, *id); err != nil {
			return err
		}
		fmt.Printf("Time slot %d deleted\n", *id)
		return nil
	}

	usage()
	os.Exit(2)
	return nil
}

// confirm asks on stdin unless -yes was given.
func confirm(yes bool, prompt string) bool {
	if yes {
		return true
	}
	fmt.Printf("%s [y/N] ", prompt)
	var answer string
	fmt.Scanln(&answer)
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
}

func printSessionCard(s model.Session) {
	fmt.Printf("Session #%d — %s (id=%d, coach=%d)\n", s.SessionNumber, s.SessionDate, s.ID, s.CoachID)
	if s.Attendance != "" {
		fmt.Printf("  Attendance:    %s\n", s.Attendance)
	}
	if s.Topics != "" {
		fmt.Printf("  Topics:        %s\n", s.Topics)
	}
	if s.Homework != "" {
		fmt.Printf("  Homework:      %s\n", s.Homework)
	}
	if s.GameAnalysis != "" {
		fmt.Printf("  Game analysis: %s\n", s.GameAnalysis)
	}
	fmt.Println()
}

func printSlotCard(s model.TimeSlot) {
	status := "available"
	if s.IsBooked {
		status = "booked"
	}
	kind := "one-off"
	if s.IsRecurring {
		kind = "recurring"
	}
	fmt.Printf("Slot %d — %s %s–%s (%s, %s, coach=%d)\n",
		s.ID,
		s.StartTime.Weekday(),
		s.StartTime.Local().Format("2006-01-02 15:04"),
		s.EndTime.Local().Format("15:04"),
		kind, status, s.CoachID)
}
