package web

import "html/template"

// commonTimezones populates the settings dropdown. Any valid IANA name
// posted to /settings/timezone is accepted; this list is only the UI.
var commonTimezones = []string{
	"UTC",
	"America/New_York",
	"America/Chicago",
	"America/Denver",
	"America/Los_Angeles",
	"America/Toronto",
	"America/Vancouver",
	"Europe/London",
	"Europe/Paris",
	"Europe/Berlin",
	"Europe/Rome",
	"Europe/Madrid",
	"Europe/Amsterdam",
	"Europe/Stockholm",
	"Europe/Helsinki",
	"Europe/Warsaw",
	"Europe/Prague",
	"Europe/Vienna",
	"Europe/Zurich",
	"Europe/Brussels",
	"Europe/Copenhagen",
	"Europe/Oslo",
	"Europe/Dublin",
	"Europe/Lisbon",
	"Europe/Athens",
	"Europe/Istanbul",
	"Europe/Moscow",
	"Asia/Jerusalem",
	"Asia/Dubai",
	"Asia/Kolkata",
	"Asia/Bangkok",
	"Asia/Singapore",
	"Asia/Hong_Kong",
	"Asia/Tokyo",
	"Asia/Seoul",
	"Asia/Shanghai",
	"Asia/Manila",
	"Asia/Jakarta",
	"Australia/Sydney",
	"Australia/Melbourne",
	"Australia/Perth",
	"Pacific/Auckland",
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Todohook</title>
</head>
<body>
    <main style="max-width:40rem;margin:4rem auto;text-align:center;font-family:sans-serif">
        <h1>Todohook</h1>
        <p>Automatic scheduling, strikethrough and duration labels for your Todoist tasks.</p>
        <p><a href="/authorize">Log in with Todoist</a></p>
    </main>
</body>
</html>
`))

type settingsData struct {
	FullName  string
	Timezone  string
	Timezones []string
}

var settingsTemplate = template.Must(template.New("settings").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Todohook - Settings</title>
</head>
<body>
    <main style="max-width:40rem;margin:4rem auto;font-family:sans-serif">
        <h1>Hello {{.FullName}}</h1>

        <section>
            <h2>Timezone</h2>
            <p>Current: {{if .Timezone}}{{.Timezone}}{{else}}not set{{end}}</p>
            <form action="/settings/timezone" method="post">
                <select name="timezone">
                    <option value="">Select your timezone...</option>
                    {{- range .Timezones}}
                    <option value="{{.}}"{{if eq . $.Timezone}} selected{{end}}>{{.}}</option>
                    {{- end}}
                </select>
                <button type="submit">Save</button>
            </form>
        </section>

        <section>
            <h2>How it works</h2>
            <ul>
                <li>Tasks with only a date get a time between 9:00 and 18:00 in your timezone.</li>
                <li>Completed tasks are struck through; uncompleting reverts the strike.</li>
                <li>Duration labels such as &#9138;1h annotate the task and set its duration.</li>
            </ul>
        </section>

        <form action="/disconnect" method="post">
            <button type="submit">Log out and disable</button>
        </form>
    </main>
</body>
</html>
`))
