package mongo

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// errSkip — visit сообщает, что узла уже нет; обход продолжается без учёта узла.
var errSkip = errors.New("skip node")

// walk обходит дерево от root без рекурсии (явный стек).
// visit обрабатывает узел и возвращает его прямых потомков.
// Каждый узел посещается не более одного раза, циклы ссылок не зацикливают обход.
// Возвращает число обработанных узлов.
func walk(root primitive.ObjectID, visit func(id primitive.ObjectID) ([]primitive.ObjectID, error)) (int, error) {
	stack := []primitive.ObjectID{root}
	seen := make(map[primitive.ObjectID]struct{})
	visited := 0

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		children, err := visit(id)
		if errors.Is(err, errSkip) {
			continue
		}

		if err != nil {
			return visited, err
		}

		visited++
		stack = append(stack, children...)
	}

	return visited, nil
}
