package global

var (
	Name          string = "Content Hub Service"
	WebClientName string = "Web"
)
