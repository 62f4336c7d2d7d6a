package endpoints

import (
	"strconv"

	"github.com/smolnetwork/smolnet"
)

// Todo is a todo item.
type Todo struct {
	UserID    int    `json:"userId"`
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// TodosAll lists all the todos.
type TodosAll struct{ dataCall }

// TodoGet fetches the todo with the given identifier.
type TodoGet struct {
	dataCall
	ID int
}

func (TodosAll) Path() string  { return "/todos" }
func (e TodoGet) Path() string { return smolnet.PathJoin("/todos", strconv.Itoa(e.ID)) }
