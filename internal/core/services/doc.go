// Package services implements the core business logic of askdoc: index
// building, hybrid retrieval and question-answering orchestration. It
// implements the driving ports and depends only on driven port interfaces.
package services
