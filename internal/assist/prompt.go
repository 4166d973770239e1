package assist

import (
	"fmt"
	"strings"
	"time"

	"taskflow-cli/internal/store"
	"taskflow-cli/internal/view"
)

// commandInstructions teaches the model the json-command format. The fenced
// blocks here must match exactly what the command parser recognizes.
const commandInstructions = `You are a task management assistant. You help the user manage tasks, offer suggestions and answer questions. When the user asks you to perform a task management operation, reply with a JSON command wrapped in a ` + "```json-command```" + ` code block.

To add a task:
` + "```json-command" + `
{
  "action": "addTask",
  "task": {
    "title": "task title",
    "description": "task description",
    "categoryId": "category ID or null",
    "important": true,
    "dueDate": "2023-01-01T00:00:00.000Z or null"
  }
}
` + "```" + `

To edit a task:
` + "```json-command" + `
{
  "action": "updateTask",
  "taskId": "ID of the task to edit",
  "updates": {
    "title": "new title",
    "description": "new description",
    "categoryId": "new category ID",
    "important": true,
    "completed": true,
    "dueDate": "2023-01-01T00:00:00.000Z or null"
  }
}
` + "```" + `

To delete a task:
` + "```json-command" + `
{
  "action": "deleteTask",
  "taskId": "ID of the task to delete"
}
` + "```" + `

To add a category:
` + "```json-command" + `
{
  "action": "addCategory",
  "category": {
    "name": "category name",
    "color": "#hexcolor"
  }
}
` + "```" + `

To edit a category:
` + "```json-command" + `
{
  "action": "updateCategory",
  "categoryId": "ID of the category to edit",
  "updates": {
    "name": "new name",
    "color": "#newhexcolor"
  }
}
` + "```" + `

To delete a category:
` + "```json-command" + `
{
  "action": "deleteCategory",
  "categoryId": "ID of the category to delete"
}
` + "```" + `

Alongside the command, also reply in natural language explaining what you did.`

// SystemPrompt builds the command instruction message including the live ID
// lists the model needs to reference existing entities.
func SystemPrompt(db store.DB) Message {
	var b strings.Builder
	b.WriteString(commandInstructions)
	b.WriteString("\n\nTask IDs currently in the system:\n")
	for _, t := range db.Tasks {
		fmt.Fprintf(&b, "- %s: %s\n", t.ID, t.Title)
	}
	b.WriteString("\nCategory IDs currently in the system:\n")
	for _, c := range db.Categories {
		fmt.Fprintf(&b, "- %s: %s\n", c.ID, c.Name)
	}
	return Message{Role: RoleSystem, Content: b.String()}
}

// DataContext builds the live task overview injected as a second system
// message, so the model can answer questions about current state.
func DataContext(db store.DB, now time.Time) Message {
	var b strings.Builder
	b.WriteString("Current tasks:\n")
	for _, t := range db.Tasks {
		status := "todo"
		if t.Completed {
			status = "done"
		}
		fmt.Fprintf(&b, "- %s [%s]", t.Title, status)
		if t.Important {
			b.WriteString(" [important]")
		}
		if name := db.CategoryName(t); name != "" {
			fmt.Fprintf(&b, " [category: %s]", name)
		}
		if t.DueDate != nil {
			fmt.Fprintf(&b, " due: %s", t.DueDate.Format("2006-01-02"))
		}
		b.WriteString("\n")
		if t.Description != "" {
			fmt.Fprintf(&b, "  description: %s\n", t.Description)
		}
	}
	s := view.Summarize(db.Tasks, now)
	fmt.Fprintf(&b, "\nStats: %d tasks total, %d completed (%d%%), %d important, %d due today, %d overdue.\n",
		s.Total, s.Completed, s.CompletionRate, s.Important, s.DueToday, s.Overdue)
	return Message{Role: RoleSystem, Content: b.String()}
}

// BuildConversation assembles the outbound message list: instructions, live
// context, the trailing prior turns, then the new user turn.
func BuildConversation(db store.DB, history []Message, userInput string, now time.Time) []Message {
	msgs := []Message{SystemPrompt(db), DataContext(db, now)}
	msgs = append(msgs, TrailingTurns(history, historyWindow)...)
	msgs = append(msgs, Message{Role: RoleUser, Content: userInput})
	return msgs
}
