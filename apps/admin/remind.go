package main

import "context"

// remind sends the upcoming-assignments digest. Meant to run from cron.
func (cli *commandLine) remind() error {
	return cli.asgSvc.SendDueReminders(context.Background(), cli.conf.ReminderHorizon)
}
