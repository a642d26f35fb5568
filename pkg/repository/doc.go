/*
Package repository implements the mission repository: the single owner of all
mission instances and the only place where their state is mutated.

It generates identities, delegates legality checks to the workflow package and
serializes mutating operations per mission ID with reference-counted locks, so
transitions on the same mission never interleave while transitions on
different missions proceed in parallel.
*/
package repository
