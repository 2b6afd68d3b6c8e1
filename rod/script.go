package rod

import (
	"strings"

	"github.com/fwojciec/chatvault"
)

// bindingName is the page function that forwards notifications to Go.
const bindingName = "chatvaultNotify"

var scriptVars = strings.NewReplacer(
	"__NOTIFY__", bindingName,
	"__CLASS__", chatvault.ControlClass,
	"__ATTR__", chatvault.InjectedAttr,
	"__SELECTED__", chatvault.SelectedAttr,
)

// observerScript reports DOM mutations and clicks on save controls.
// Mutations that only add save controls are ignored.
var observerScript = scriptVars.Replace(`() => {
	if (window.__chatvaultInstalled) return;
	window.__chatvaultInstalled = true;

	const notify = (payload) => {
		if (typeof window.__NOTIFY__ === 'function') window.__NOTIFY__(payload);
	};
	const isControl = (n) => n.nodeType === 1 && n.classList.contains('__CLASS__');

	const start = () => {
		new MutationObserver((records) => {
			for (const r of records) {
				if (r.type === 'childList' && r.addedNodes.length > 0 &&
					Array.from(r.addedNodes).every(isControl)) {
					continue;
				}
				notify({type: 'changed'});
				return;
			}
		}).observe(document.documentElement, {childList: true, subtree: true, characterData: true});
	};
	if (document.documentElement) {
		start();
	} else {
		document.addEventListener('DOMContentLoaded', start);
	}

	document.addEventListener('click', (e) => {
		const btn = e.target && e.target.closest ? e.target.closest('.__CLASS__') : null;
		if (!btn) return;
		e.preventDefault();
		e.stopPropagation();
		notify({type: 'save', id: btn.dataset.chatvaultId || ''});
	}, true);
}`)

// snapshotScript returns the document HTML with elements intersecting the
// text selection marked.
var snapshotScript = scriptVars.Replace(`() => {
	const marked = [];
	const sel = window.getSelection();
	if (sel && !sel.isCollapsed) {
		for (let i = 0; i < sel.rangeCount; i++) {
			const range = sel.getRangeAt(i);
			let root = range.commonAncestorContainer;
			if (root.nodeType !== 1) root = root.parentElement;
			if (!root) continue;
			const walker = document.createTreeWalker(root, NodeFilter.SHOW_ELEMENT);
			for (let n = walker.currentNode; n; n = walker.nextNode()) {
				if (range.intersectsNode(n)) {
					n.setAttribute('__SELECTED__', '');
					marked.push(n);
				}
			}
		}
	}
	const html = document.documentElement.outerHTML;
	for (const n of marked) n.removeAttribute('__SELECTED__');
	return html;
}`)

// injectScript adds a save control to one message element and reports
// "added", "present" or "missing".
var injectScript = scriptVars.Replace(`(selector, index, id) => {
	const el = document.querySelectorAll(selector)[index];
	if (!el) return 'missing';
	if (el.hasAttribute('__ATTR__') || el.querySelector('.__CLASS__')) return 'present';

	const btn = document.createElement('button');
	btn.type = 'button';
	btn.className = '__CLASS__';
	btn.dataset.chatvaultId = id;
	btn.textContent = 'Save to vault';
	btn.title = 'Save this message to your vault';
	btn.style.cssText = 'margin:4px 0;padding:2px 8px;font-size:12px;cursor:pointer;opacity:0.7;';
	el.setAttribute('__ATTR__', id);
	el.appendChild(btn);
	return 'added';
}`)

// downloadScript clicks a temporary download link.
const downloadScript = `(uri, name) => {
	const a = document.createElement('a');
	a.href = uri;
	a.download = name;
	document.body.appendChild(a);
	a.click();
	a.remove();
}`
