// Package cli реализует командный интерфейс клиента deltasync
package cli

import (
	"fmt"

	"github.com/iudanet/deltasync/internal/client/auth"
	"github.com/iudanet/deltasync/internal/client/data"
	"github.com/iudanet/deltasync/internal/client/iocli"
	"github.com/iudanet/deltasync/internal/client/netmon"
	"github.com/iudanet/deltasync/internal/client/storage"
	"github.com/iudanet/deltasync/internal/client/sync"
)

type Cli struct {
	io          iocli.IO
	authService *auth.Service
	dataService data.Service
	orch        *sync.Orchestrator
	monitor     *netmon.Monitor
	queue       storage.QueueStorage
	conflicts   storage.ConflictStorage
}

func New(
	io iocli.IO,
	authService *auth.Service,
	dataService data.Service,
	orch *sync.Orchestrator,
	monitor *netmon.Monitor,
	queue storage.QueueStorage,
	conflicts storage.ConflictStorage,
) *Cli {
	return &Cli{
		io:          io,
		authService: authService,
		dataService: dataService,
		orch:        orch,
		monitor:     monitor,
		queue:       queue,
		conflicts:   conflicts,
	}
}

func PrintUsage() {
	fmt.Println("DeltaSync Client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  deltasync [OPTIONS] COMMAND")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version        Show version information")
	fmt.Println("  --server URL     Server URL (default: http://localhost:8080)")
	fmt.Println("  --db PATH        Path to local database (default: deltasync-client.db)")
	fmt.Println("  --policy NAME    Conflict policy: default, local-first, remote-first, messaging")
	fmt.Println("  --entities LIST  Comma-separated entity types to pull (default: task)")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  register                     Register new user")
	fmt.Println("  login                        Login to server")
	fmt.Println("  logout                       Remove local session")
	fmt.Println("  status                       Show session and sync status")
	fmt.Println("  put <type> [id] [k=v ...]    Create or update an entity")
	fmt.Println("  get <type> <id>              Show entity fields")
	fmt.Println("  list <type>                  List entities of a type")
	fmt.Println("  delete <type> <id>           Delete an entity")
	fmt.Println("  sync                         Run one synchronization cycle")
	fmt.Println("  conflicts                    List unresolved conflicts")
	fmt.Println("  resolve <id> <strategy>      Resolve a conflict")
	fmt.Println("  watch                        Run background sync until interrupted")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  deltasync register")
	fmt.Println("  deltasync put task 'title=Buy milk' 'done=false'")
	fmt.Println("  deltasync put task b692f5c0-2d88-4aa1-a9e1-13aa6e4976d5 done=true")
	fmt.Println("  deltasync list task")
	fmt.Println("  deltasync sync")
	fmt.Println("  deltasync conflicts")
	fmt.Println("  deltasync resolve task-1-1700000000 keep_local")
	fmt.Println("  deltasync --policy messaging watch")
}
