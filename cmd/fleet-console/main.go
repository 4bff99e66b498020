package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true).
			PaddingLeft(2)

	normalStyle = lipgloss.NewStyle().
			PaddingLeft(4)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)
)

type step int

const (
	stepEnteringUsername step = iota
	stepEnteringPassword
	stepLoggingIn
	stepLoadingRobots
	stepSelectingRobot
	stepSelectingAction
	stepDispatching
	stepComplete
)

type robot struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	BatteryLevel int64  `json:"battery_level"`
}

type action struct {
	Label       string
	Instruction interface{} // tagged wire form: bare string or {tag: payload}
}

var actions = []action{
	{Label: "Start ZigZag cleaning", Instruction: map[string]string{"Task": "ZigZag"}},
	{Label: "Start Circular cleaning", Instruction: map[string]string{"Task": "Circular"}},
	{Label: "Set idle", Instruction: "Idle"},
	{Label: "Abort (safety)", Instruction: map[string]string{"Abort": "Safety"}},
	{Label: "Abort (obstacle)", Instruction: map[string]string{"Abort": "Obstacle"}},
}

type model struct {
	step          step
	robots        []robot
	cursor        int
	actionCursor  int
	selectedRobot *robot
	username      string
	loginPass     string
	userID        string
	currentInput  string
	message       string
	quitting      bool
}

type robotsLoadedMsg []robot
type dispatchedMsg struct{ status string }
type loginSuccessMsg struct{ userID string }
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

func apiBase() string {
	if v := os.Getenv("FLEET_API_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://localhost:3536"
}

func initialModel() model {
	return model{
		step:   stepEnteringUsername,
		robots: []robot{},
		cursor: 0,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func loginUser(username, password string) tea.Cmd {
	return func() tea.Msg {
		client := &http.Client{Timeout: 10 * time.Second}

		payload := map[string]string{
			"username": username,
			"password": password,
		}

		jsonData, _ := json.Marshal(payload)
		loginURL := apiBase() + "/api/v1/auth/login"

		req, _ := http.NewRequest("POST", loginURL, bytes.NewBuffer(jsonData))
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return errMsg{fmt.Errorf("could not reach the fleet server: %w", err)}
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return errMsg{fmt.Errorf("invalid username or password")}
		}

		var result map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return errMsg{fmt.Errorf("unexpected login response")}
		}

		success, _ := result["success"].(bool)
		userID, ok := result["user_id"].(string)
		if !success || !ok || userID == "" {
			return errMsg{fmt.Errorf("invalid username or password")}
		}

		return loginSuccessMsg{userID: userID}
	}
}

func loadRobots() tea.Msg {
	client := &http.Client{Timeout: 10 * time.Second}

	resp, err := client.Get(apiBase() + "/api/v1/robots")
	if err != nil {
		return errMsg{fmt.Errorf("could not list robots: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errMsg{fmt.Errorf("robot listing returned %d", resp.StatusCode)}
	}

	var result struct {
		Data []robot `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return errMsg{fmt.Errorf("unexpected robot listing response")}
	}

	return robotsLoadedMsg(result.Data)
}

func dispatchCommand(robotID string, act action) tea.Cmd {
	return func() tea.Msg {
		client := &http.Client{Timeout: 15 * time.Second}

		payload := map[string]interface{}{
			"robot_id":    robotID,
			"instruction": act.Instruction,
		}
		jsonData, _ := json.Marshal(payload)

		req, _ := http.NewRequest("POST", apiBase()+"/api/v1/commands", bytes.NewBuffer(jsonData))
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return errMsg{fmt.Errorf("failed to dispatch: %w", err)}
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return errMsg{fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))}
		}

		var result map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return errMsg{fmt.Errorf("unexpected dispatch response")}
		}
		status, _ := result["status"].(string)
		if status == "" {
			status = "queued"
		}

		return dispatchedMsg{status: status}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.step == stepSelectingRobot && m.cursor > 0 {
				m.cursor--
			}
			if m.step == stepSelectingAction && m.actionCursor > 0 {
				m.actionCursor--
			}

		case "down", "j":
			if m.step == stepSelectingRobot && m.cursor < len(m.robots)-1 {
				m.cursor++
			}
			if m.step == stepSelectingAction && m.actionCursor < len(actions)-1 {
				m.actionCursor++
			}

		case "backspace":
			if len(m.currentInput) > 0 {
				m.currentInput = m.currentInput[:len(m.currentInput)-1]
			}

		default:
			if m.step == stepEnteringUsername || m.step == stepEnteringPassword {
				m.currentInput += msg.String()
			}

		case "enter":
			switch m.step {
			case stepEnteringUsername:
				if m.currentInput != "" {
					m.username = m.currentInput
					m.currentInput = ""
					m.step = stepEnteringPassword
				}

			case stepEnteringPassword:
				if m.currentInput != "" {
					m.loginPass = m.currentInput
					m.currentInput = ""
					m.step = stepLoggingIn
					m.message = "Logging in..."
					return m, loginUser(m.username, m.loginPass)
				}

			case stepSelectingRobot:
				if len(m.robots) > 0 {
					m.selectedRobot = &m.robots[m.cursor]
					m.step = stepSelectingAction
				}

			case stepSelectingAction:
				if m.selectedRobot != nil {
					m.step = stepDispatching
					act := actions[m.actionCursor]
					m.message = fmt.Sprintf("Dispatching %q to %s...", act.Label, m.selectedRobot.ID)
					return m, dispatchCommand(m.selectedRobot.ID, act)
				}

			case stepComplete:
				// Back to the robot list for the next command
				m.step = stepLoadingRobots
				m.message = ""
				return m, loadRobots
			}
		}

	case loginSuccessMsg:
		m.userID = msg.userID
		m.step = stepLoadingRobots
		m.message = successStyle.Render("Logged in as " + m.username)
		return m, loadRobots

	case robotsLoadedMsg:
		m.robots = []robot(msg)
		m.cursor = 0
		if len(m.robots) == 0 {
			m.message = "No robots registered yet"
			m.step = stepComplete
		} else {
			m.step = stepSelectingRobot
		}

	case dispatchedMsg:
		m.step = stepComplete
		m.message = successStyle.Render(fmt.Sprintf("Command %s", msg.status))

	case errMsg:
		m.message = errorStyle.Render(msg.err.Error())
		if m.userID == "" {
			m.step = stepEnteringUsername
		} else {
			m.step = stepComplete
		}
	}

	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("Fleet Console\n\n"))

	switch m.step {
	case stepEnteringUsername:
		if m.message != "" {
			s.WriteString(m.message + "\n\n")
		}
		s.WriteString(promptStyle.Render("Enter your username:\n"))
		s.WriteString(inputStyle.Render("> " + m.currentInput))
		s.WriteString("\n\nPress Enter\n")

	case stepEnteringPassword:
		s.WriteString(promptStyle.Render("Enter your password:\n"))
		s.WriteString(inputStyle.Render("> " + strings.Repeat("*", len(m.currentInput))))
		s.WriteString("\n\nPress Enter\n")

	case stepLoggingIn, stepLoadingRobots, stepDispatching:
		s.WriteString(m.message + "\n")

	case stepSelectingRobot:
		if m.message != "" {
			s.WriteString(m.message + "\n\n")
		}
		s.WriteString(promptStyle.Render("Select a robot:\n\n"))

		for i, r := range m.robots {
			cursor := " "
			style := normalStyle
			if m.cursor == i {
				cursor = ">"
				style = selectedStyle
			}
			label := r.ID
			if r.Name != "" {
				label = fmt.Sprintf("%s (%s)", r.Name, r.ID)
			}
			s.WriteString(fmt.Sprintf("%s %s [%s, battery %d%%]\n", cursor, style.Render(label), r.Status, r.BatteryLevel))
		}

		s.WriteString("\nUse up/down, Enter to select, q to quit\n")

	case stepSelectingAction:
		s.WriteString(promptStyle.Render(fmt.Sprintf("Command for %s:\n\n", m.selectedRobot.ID)))

		for i, act := range actions {
			cursor := " "
			style := normalStyle
			if m.actionCursor == i {
				cursor = ">"
				style = selectedStyle
			}
			s.WriteString(fmt.Sprintf("%s %s\n", cursor, style.Render(act.Label)))
		}

		s.WriteString("\nUse up/down, Enter to dispatch, q to quit\n")

	case stepComplete:
		s.WriteString(m.message + "\n")
		s.WriteString("\nPress Enter to continue, q to quit\n")
	}

	return s.String()
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
