// Package paths provides centralized path handling for a deploy root.
//
// A deploy root has a fixed layout that external tooling relies on:
//
//	<deploy_root>/
//	  releases/<revision>/   one fully checked out tree per revision
//	  shared/                state that outlives releases (logs, pids, ...)
//	  current -> releases/<revision>
//
// # Environment Variables
//
//   - DEPLOYREV_DEPLOY_TO: deploy root used when none is given explicitly
//
// # Usage
//
//	layout, err := paths.New("/srv/app")
//	if err != nil {
//	    return err
//	}
//	release := layout.ReleasePath("3eb5ca6c")  // /srv/app/releases/3eb5ca6c
//	current := layout.CurrentPath()            // /srv/app/current
package paths
