package render

import (
	"fmt"
	"time"
)

const hubTemplate = `# %[1]s

**Type**: Concept Index
**Created**: %[2]s
**Auto-generated**: Yes

## 🎯 What is this?

This is a hub page for all notes related to **%[1]s**. Obsidian will automatically show backlinks below.

## 📚 Related Notes

*Backlinks will appear here automatically*

## 🧠 ADHD Tips

- Use this page to see all notes about %[1]s in one place
- Great for refreshing your memory before diving into a specific note
- Check the backlinks section to find related context

---

*Auto-generated by Selene - edit freely!*
`

// Hub renders the index page for a concept, stamped with the creation date.
func Hub(concept string, created time.Time) string {
	return fmt.Sprintf(hubTemplate, concept, created.Format(dateLayout))
}
