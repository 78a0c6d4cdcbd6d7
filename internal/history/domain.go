package history

// Revision is one entry of a repository log, in the order the log reports it.
type Revision struct {
	Revision string `json:"revision"`
	Author   string `json:"author"`
	Date     string `json:"date"`
	Message  string `json:"message"`
}
