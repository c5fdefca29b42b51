package chat

import "fmt"

const (
	DefaultGreeting = "Hello, I'm Pathfinder—your intelligent job search assistant. What kind of role are you looking for?"

	msgUploadPrompt   = "Excellent. To find the best matches for you, I'll need to review your resume. Please upload it below."
	msgAnalyzing      = "Perfect. I've analyzed your background and I'm now searching for positions that match your profile..."
	msgUnreadableFile = "I had trouble reading that file. Could you try uploading it again?"
	msgNoMatches      = "I've searched through recent postings but couldn't find any strong matches at this time. Try broadening your search criteria or check back later."
	msgSearchFailed   = "Something went wrong during the search. Please try again."

	msgHintAwaitingResume = "I still need your resume before I can search. Please upload it as a PDF."
	msgHintResultsShown   = "This search is complete. Start a new search to look for a different role."
)

func uploadEcho(name string) string {
	return "📄 " + name
}

func foundMessage(count int) string {
	noun := "matches"
	if count == 1 {
		noun = "match"
	}
	return fmt.Sprintf("I found %d excellent %s for you:", count, noun)
}

func historyRequestMessage(query string) string {
	return "View history: " + query
}

func historyFoundMessage(count int, query string) string {
	return fmt.Sprintf("I found %d excellent matches from your previous search for \"%s\":", count, query)
}

// hintFor has no case for StateSearching: that state only exists while the
// controller is busy, so text never reaches it.
func hintFor(s State) string {
	if s == StateAwaitingResume {
		return msgHintAwaitingResume
	}
	return msgHintResultsShown
}
